package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/wiring/version"
)

func newVersionCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if opts.Output != OutputHuman {
				return render(cmd.OutOrStdout(), opts.Output, info)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "wiring", info.String())
			return err
		},
	}
}
