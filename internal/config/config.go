package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"go.trai.ch/zerr"

	"github.com/frederic-klein/dustpkg/internal/dist"
	"github.com/frederic-klein/dustpkg/internal/lockfile"
	"github.com/frederic-klein/dustpkg/internal/manifest"
)

const (
	// EnvPrefix prefixes every environment override, e.g. DUSTPKG_LOG_LEVEL.
	EnvPrefix = "DUSTPKG"
	// FileName is the config file base name looked up in the project dir and $HOME.
	FileName = ".dustpkg"
)

var (
	// ErrReadFailed is returned when a config file exists but cannot be read.
	ErrReadFailed = zerr.New("failed to read config file")

	// ErrInvalidProfile is returned when profile_version is not a known profile.
	ErrInvalidProfile = zerr.New("unknown profile_version")
)

// StdlibConfig controls the pins written by add-stdlib.
type StdlibConfig struct {
	Version string `mapstructure:"version"`
}

// Config holds the runtime configuration of a dustpkg invocation.
// Values are populated from .dustpkg.yaml, DUSTPKG_* env vars, and CLI flags.
type Config struct {
	ProfileVersion     string       `mapstructure:"profile_version"`
	PackageVersion     string       `mapstructure:"package_version"`
	DefaultPackageName string       `mapstructure:"default_package_name"`
	ManifestFile       string       `mapstructure:"manifest_file"`
	LockFile           string       `mapstructure:"lock_file"`
	LogLevel           string       `mapstructure:"log_level"`
	Verbose            bool         `mapstructure:"verbose"`
	Stdlib             StdlibConfig `mapstructure:"stdlib"`
}

// Profile returns the configured default profile.
func (c Config) Profile() dist.Profile {
	return dist.Profile(c.ProfileVersion)
}

// ManifestDefaults returns the values used when initializing a manifest.
func (c Config) ManifestDefaults() manifest.Defaults {
	return manifest.Defaults{Version: c.PackageVersion, Profile: c.Profile()}
}

// Level returns the effective log level; verbose forces debug.
func (c Config) Level() string {
	if c.Verbose {
		return "debug"
	}
	return c.LogLevel
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ProfileVersion:     string(dist.DefaultProfile),
		PackageVersion:     "0.1.0",
		DefaultPackageName: "dustpkg-package",
		ManifestFile:       manifest.DefaultFileName,
		LockFile:           lockfile.DefaultFileName,
		LogLevel:           "info",
		Stdlib:             StdlibConfig{Version: dist.StdlibVersion},
	}
}

// SetDefaults registers built-in defaults and env binding on v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("profile_version", d.ProfileVersion)
	v.SetDefault("package_version", d.PackageVersion)
	v.SetDefault("default_package_name", d.DefaultPackageName)
	v.SetDefault("manifest_file", d.ManifestFile)
	v.SetDefault("lock_file", d.LockFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("stdlib.version", d.Stdlib.Version)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile loads cfgFile if set, otherwise looks for .dustpkg.yaml in dir and
// then $HOME. A missing config file is not an error.
func ReadFile(v *viper.Viper, cfgFile, dir string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return zerr.Wrap(err, ErrReadFailed.Error())
	}
	return nil
}

// Load reads configuration from v, applying defaults for anything not set by
// config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, zerr.Wrap(err, ErrReadFailed.Error())
	}
	if !cfg.Profile().Valid() {
		return Config{}, zerr.With(ErrInvalidProfile, "profile_version", cfg.ProfileVersion)
	}
	return cfg, nil
}

// ForDir loads the configuration that applies to the project in dir, reading
// its .dustpkg.yaml (or cfgFile when set) from fsys with a fresh viper.
func ForDir(fsys afero.Fs, cfgFile, dir string) (Config, error) {
	v := viper.New()
	v.SetFs(fsys)
	if err := ReadFile(v, cfgFile, dir); err != nil {
		return Config{}, err
	}
	return Load(v)
}
