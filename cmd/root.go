package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "epay-bridge",
	Short: "Epay payment gateway bridge",
	Long:  "Bridges the order platform and the Epay processor: payment initiation, webhook reconciliation, and expiry jobs.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
