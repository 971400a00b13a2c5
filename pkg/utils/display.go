// Package utils provides small shared helpers for terminal output.
package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DisplayWidth returns the display width of a string, accounting for unicode characters.
//
// Wide characters (CJK, emoji) occupy two terminal cells and count as 2.
//
// Parameters:
//   - val: The string to measure
//
// Returns:
//   - int: The display width in character cells
func DisplayWidth(val string) int {
	return runewidth.StringWidth(val)
}

// ToWidth pads a string with spaces to the given display width.
//
// Strings already at or beyond the target width are returned unchanged,
// as is any string when width is <= 0.
//
// Parameters:
//   - val: The string to pad
//   - width: The target display width in character cells
//
// Returns:
//   - string: The padded string
func ToWidth(val string, width int) string {
	if width <= 0 {
		return val
	}
	current := DisplayWidth(val)
	if current >= width {
		return val
	}
	return val + strings.Repeat(" ", width-current)
}

// Max returns the largest of the given integers, or 0 for no input.
func Max(values ...int) int {
	m := 0
	for i, v := range values {
		if i == 0 || v > m {
			m = v
		}
	}
	return m
}

// ColumnWidths computes per-column display widths for a header row plus
// data rows. Short rows are tolerated.
//
// Parameters:
//   - header: Column titles
//   - rows: Table cells
//
// Returns:
//   - []int: Width of each column, sized to the header
func ColumnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = DisplayWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			widths[i] = Max(widths[i], DisplayWidth(cell))
		}
	}
	return widths
}
