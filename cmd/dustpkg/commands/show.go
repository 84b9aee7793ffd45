package commands

import (
	"github.com/spf13/cobra"

	"github.com/frederic-klein/dustpkg/internal/lockfile"
)

func (c *CLI) newShowCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the lock file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := lockfile.ParseFormat(format)
			if err != nil {
				return err
			}
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			lock, err := e.proj.Lock()
			if err != nil {
				return err
			}
			return lockfile.Encode(cmd.OutOrStdout(), lock, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", string(lockfile.FormatTOML), "Output format: toml, yaml or json")
	return cmd
}
