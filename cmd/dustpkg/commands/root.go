// Package commands implements the dustpkg command line.
package commands

import (
	"context"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/frederic-klein/dustpkg/internal/config"
	"github.com/frederic-klein/dustpkg/internal/logger"
	"github.com/frederic-klein/dustpkg/internal/project"
)

// CLI represents the dustpkg command line interface.
type CLI struct {
	fs      afero.Fs
	v       *viper.Viper
	rootCmd *cobra.Command

	cfgFile string
	dir     string
	verbose bool
}

// New creates a CLI operating on fsys.
func New(fsys afero.Fs) *CLI {
	c := &CLI{
		fs: fsys,
		v:  viper.New(),
	}
	c.v.SetFs(fsys)

	rootCmd := &cobra.Command{
		Use:           "dustpkg",
		Short:         "Deterministic dependency resolver for Dust packages",
		Long:          "dustpkg pins the dependencies declared in Dust.toml into dustpkg.lock and verifies that the two still agree.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "Config file (default is .dustpkg.yaml in the project dir or $HOME)")
	flags.StringVarP(&c.dir, "dir", "C", ".", "Project directory")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "Verbose output")
	_ = c.v.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(
		c.newInitCmd(),
		c.newAddCmd(),
		c.newAddStdlibCmd(),
		c.newRemoveCmd(),
		c.newUpdateCmd(),
		c.newBuildCmd(),
		c.newVerifyCmd(),
		c.newCheckCmd(),
		c.newShowCmd(),
		c.newWatchCmd(),
	)

	c.rootCmd = rootCmd
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

// env is what a subcommand needs to run.
type env struct {
	cfg  config.Config
	log  *zap.SugaredLogger
	dir  string
	proj *project.Project
}

// setup loads configuration and builds the logger and project for cmd.
func (c *CLI) setup(cmd *cobra.Command) (*env, error) {
	dir := c.dir
	if _, ok := c.fs.(*afero.OsFs); ok {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = abs
	}

	if err := config.ReadFile(c.v, c.cfgFile, dir); err != nil {
		return nil, err
	}
	cfg, err := config.Load(c.v)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Level: cfg.Level(), Output: cmd.ErrOrStderr()})
	log.Debugw("loaded config", "config", c.v.ConfigFileUsed(), "profile", cfg.ProfileVersion)

	return &env{
		cfg:  cfg,
		log:  log,
		dir:  dir,
		proj: project.New(c.fs, dir, cfg, log),
	}, nil
}

func resolveDir(base, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(base, dir)
}
