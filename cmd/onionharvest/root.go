// Package main provides the entry point for the onionharvest CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for onionharvest.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onionharvest",
		Short: "Bounded, polite crawler for Tor hidden services",
		Long: `onionharvest crawls Tor hidden services (.onion addresses) breadth-first
through a SOCKS5 proxy and extracts text content with CSS selector rules.

Seed pages are discovered through a clearnet onion directory search, or
supplied explicitly. Crawls are deliberately bounded: depth, page, and
record caps plus a pacing delay keep the load on hidden services low.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
