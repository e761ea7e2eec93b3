// Package main is the entry point for the guacd CLI.
//
// Usage:
//
//	guacd [flags] <command> [args]
//
// Commands:
//
//	menu      - Print the menu board
//	order     - Interactive order console (type what a customer would say)
//	serve     - WebSocket operation server for the voice platform
//	version   - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/signalwire/sigmond-holyguacamole/cmd/guacd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
