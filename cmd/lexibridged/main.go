// cmd/lexibridged/main.go
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "lexibridged",
	Short: "IP control bridge for Lexicon AV receivers",
	Long: `Lexibridged drives a Lexicon AV receiver over its TCP control port.

It keeps a cached status snapshot fresh with adaptive polling, exposes
the snapshot and the control commands over a small HTTP API, and holds
the socket only for the duration of each exchange so the vendor's own
app is never starved.`,
	Version: "1.2.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "lexibridge.yaml", "Path to the YAML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
