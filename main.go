package main

import (
	"fmt"
	"os"

	"cucm-service-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "\n❌", err)
		os.Exit(cmd.ExitCode(err))
	}
}
