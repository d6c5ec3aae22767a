package main

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "callflowd",
	Short: "NumSphere call-flow voice server",
	Long: `callflowd serves the voice webhook endpoint that interprets
user-authored call flows: inbound calls and gather continuations arrive as
webhooks, the flow graph is compiled into markup, and the response controls
the call. It also ships tooling to validate, dry-run, and exercise flows.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches ./callflow.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(callCmd)
}
