// Command chartctl inspects, converts and serves charts without opening the
// editor.
package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "chartctl",
		Short:         "Chart tools",
		Long:          `Inspect, convert and serve .chart and .mid charts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInspectCmd(),
		newTempoCmd(),
		newConvertCmd(),
		newHistoryCmd(),
		newServeCmd(),
	)
	return root
}

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}
