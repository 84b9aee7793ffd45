package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/dustpkg/internal/dist"
)

func (c *CLI) newInitCmd() *cobra.Command {
	var (
		name   string
		stdlib bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a Dust.toml manifest in the project directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			m, err := e.proj.Init(name)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Created %s for package '%s'\n", e.cfg.ManifestFile, m.Package.Name)

			if stdlib {
				pins, err := e.proj.AddStdlib(nil)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "Added standard library dependencies (%s)\n", joinPinNames(pins))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Package name (default is the directory name)")
	cmd.Flags().BoolVar(&stdlib, "stdlib", false, "Also pin the standard library for the profile")
	return cmd
}

func (c *CLI) newAddCmd() *cobra.Command {
	var seed seedValue

	cmd := &cobra.Command{
		Use:   "add NAME VERSION",
		Short: "Pin a dependency and regenerate the lock file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			name, version := args[0], args[1]
			if _, err := e.proj.Add(name, version, seed.Get()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added dependency '%s = %s' and updated %s\n",
				name, version, e.proj.LockPath())
			return nil
		},
	}

	addSeedFlag(cmd.Flags(), &seed, "Seed for dependency ordering (default is sorted by name)")
	return cmd
}

func (c *CLI) newAddStdlibCmd() *cobra.Command {
	var seed seedValue

	cmd := &cobra.Command{
		Use:   "add-stdlib",
		Short: "Pin the standard library packages for the manifest's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			pins, err := e.proj.AddStdlib(seed.Get())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added standard library dependencies (%s)\n", joinPinNames(pins))
			return nil
		},
	}

	addSeedFlag(cmd.Flags(), &seed, "Seed for dependency ordering (default is sorted by name)")
	return cmd
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	var seed seedValue

	cmd := &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Unpin a dependency and regenerate the lock file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			if _, err := e.proj.Remove(args[0], seed.Get()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed dependency '%s' and updated %s\n", args[0], e.proj.LockPath())
			return nil
		},
	}

	addSeedFlag(cmd.Flags(), &seed, "Seed for dependency ordering (default is sorted by name)")
	return cmd
}

func (c *CLI) newUpdateCmd() *cobra.Command {
	var seed seedValue

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Regenerate the lock file from the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := c.setup(cmd)
			if err != nil {
				return err
			}
			if _, err := e.proj.Update(seed.Get()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", e.proj.LockPath())
			return nil
		},
	}

	addSeedFlag(cmd.Flags(), &seed, "Seed for dependency ordering (default is sorted by name)")
	return cmd
}

func joinPinNames(pins []dist.Pin) string {
	names := make([]string, len(pins))
	for i, p := range pins {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}
