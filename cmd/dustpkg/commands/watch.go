package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/dustpkg/internal/lockfile"
	"github.com/frederic-klein/dustpkg/internal/watch"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	var seed seedValue

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate the lock file whenever the manifest changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			w := watch.New(e.proj, seed.Get(), e.log, watch.OnUpdate(func(l *lockfile.Lockfile) {
				e.log.Infow("lock file regenerated",
					"path", filepath.Base(e.proj.LockPath()),
					"dependencies", joinPinNames(l.Pins()),
					"seeded", l.Seeded())
			}))
			return w.Run(cmd.Context())
		},
	}

	addSeedFlag(cmd.Flags(), &seed, "Seed for dependency ordering (default is sorted by name)")
	return cmd
}
