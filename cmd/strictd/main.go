package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goflash/strict/cmd/strictd/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:           "strictd",
		Short:         "Strict request URI validation",
		Long:          "Serve HTTP behind the StrictURI middleware, or check request URIs from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewServeCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, commands.ErrInvalidURI) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
