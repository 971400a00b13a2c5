// Package envguard snapshots and restores the process environment around a
// scoped region.
//
// The guard exists for tests that deliberately mutate process-global
// variables; harness code itself passes explicit environment maps to the
// command runner instead. Because the environment table is process-wide,
// guard scopes must never overlap across concurrently executing tests.
package envguard

import (
	"os"
	"strings"
)

// Guard holds an immutable snapshot of the process environment captured at
// construction time.
//
// The snapshot preserves the order reported by os.Environ and is used only
// for restoration; it is never mutated after capture.
type Guard struct {
	snapshot []string
	keys     map[string]string
}

// Snapshot captures the full current set of process environment variables.
//
// The caller may freely set, overwrite, or delete variables afterwards and
// then call Restore to revert every change.
//
// Returns:
//   - *Guard: Guard holding the captured environment
func Snapshot() *Guard {
	environ := os.Environ()
	snapshot := make([]string, len(environ))
	copy(snapshot, environ)

	keys := make(map[string]string, len(snapshot))
	for _, kv := range snapshot {
		if key, value, ok := strings.Cut(kv, "="); ok {
			keys[key] = value
		}
	}

	return &Guard{snapshot: snapshot, keys: keys}
}

// Restore reverts the process environment to the captured snapshot.
//
// It performs the following operations:
//   - Deletes variables that were added since the snapshot
//   - Re-adds variables that were deleted since the snapshot
//   - Reverts variables whose values changed
//
// Restore is idempotent and safe to call from a deferred statement, so it
// runs on normal return, early return, and panic alike. No side effect of
// the guarded region persists past the call.
func (g *Guard) Restore() {
	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, existed := g.keys[key]; !existed {
			_ = os.Unsetenv(key)
		}
	}

	for _, kv := range g.snapshot {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if current, present := os.LookupEnv(key); !present || current != value {
			_ = os.Setenv(key, value)
		}
	}
}

// Vars returns a copy of the captured variables as a map.
//
// Returns:
//   - map[string]string: Snapshot contents keyed by variable name
func (g *Guard) Vars() map[string]string {
	vars := make(map[string]string, len(g.keys))
	for key, value := range g.keys {
		vars[key] = value
	}
	return vars
}

// With runs fn inside a snapshot/restore scope.
//
// The environment is captured before fn runs and restored afterwards, even
// when fn panics. The panic is re-raised after restoration so the caller's
// failure reporting still sees it.
//
// Parameters:
//   - fn: Function to run with a guarded environment
func With(fn func()) {
	guard := Snapshot()
	defer guard.Restore()
	fn()
}
