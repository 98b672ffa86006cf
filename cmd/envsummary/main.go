package main

import (
	"os"

	"github.com/harrison/envsummary/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()
	os.Exit(cmd.Execute(rootCmd))
}
