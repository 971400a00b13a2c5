// Package main is the entry point for the pipdrive CLI application.
//
// This file bootstraps the application by invoking the command execution
// logic defined in the cmd package. The pipdrive tool drives a
// pipenv-compatible dependency manager and inspects the Pipfile and lock
// file it maintains.
package main

import "github.com/pipdrive/pipdrive/cmd"

// main initializes and runs the pipdrive CLI application.
//
// It delegates all command parsing and execution to the cmd package,
// which handles subcommands like sources, check, venv, and run.
func main() {
	cmd.Execute()
}
