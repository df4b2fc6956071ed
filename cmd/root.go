package cmd

import (
	"os"

	"github.com/TangibleTNFT/tangible-foundation-contracts/logx"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rebase-node",
	Short: "Elastic supply ledger node CLI",
	Long:  "Command line interface for running and managing an elastic supply ledger node.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
