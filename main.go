package main

import (
	"os"

	"quote_automation/presentation/terminal"
)

func main() {
	if err := terminal.NewTerminalInterface().Run(os.Args[1:]); err != nil {
		os.Exit(1)
	}
}
