// Package main is the entry point for the testforge CLI.
package main

import "gooze.dev/pkg/testforge/cmd"

func main() {
	cmd.Execute()
}
