// Package main is the entry point for the pocketctl CLI.
package main

import (
	"pocketctl/cli/cmd"
)

func main() {
	cmd.Execute()
}
