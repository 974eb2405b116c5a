package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/GriffinCanCode/AgentOS/modemanager/internal/domain/policy"
	"github.com/spf13/cobra"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect policy files",
	}
	cmd.AddCommand(newPolicyCheckCmd())
	return cmd
}

func newPolicyCheckCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Parse a policy file and list its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := policy.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !quiet {
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "MODE\tAPP\tAUDIO\tDISPLAY\tTUNER\tFULL\tRESUME\tMIXING\tEXCLUSIVE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%t\t%t\t%t\t%d\n",
						e.Mode, e.App, e.Audio, e.Display, e.Tuner, e.Full, e.Resume, e.Mixing, e.Exclusive)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}

			for _, dup := range policy.Duplicates(entries) {
				fmt.Fprintf(out, "warning: duplicate record %s is shadowed\n", dup)
			}
			fmt.Fprintf(out, "SHA256 Fingerprint: %s\n", policy.Fingerprint(entries))
			fmt.Fprintf(out, "%d records OK\n", len(entries))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the summary")
	return cmd
}
