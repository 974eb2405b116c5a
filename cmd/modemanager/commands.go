package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modemanager",
		Short: "Display, audio and tuner arbitration daemon",
		Long: `modemanager decides which application owns the display, the audio
output and the tuner, following a static policy table. It runs as a
daemon (serve) and can be driven from the command line (ctl).`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCtlCmd())
	rootCmd.AddCommand(newPolicyCmd())
	return rootCmd
}
