// Package project implements the dustpkg commands against a project
// directory holding a manifest and its lock file.
package project

import (
	"errors"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
	"go.uber.org/zap"

	"github.com/frederic-klein/dustpkg/internal/config"
	"github.com/frederic-klein/dustpkg/internal/dist"
	"github.com/frederic-klein/dustpkg/internal/lockfile"
	"github.com/frederic-klein/dustpkg/internal/manifest"
	"github.com/frederic-klein/dustpkg/internal/ordering"
	"github.com/frederic-klein/dustpkg/internal/resolver"
	"github.com/frederic-klein/dustpkg/internal/validate"
)

var (
	// ErrManifestExists is returned by Init when the manifest is already present.
	ErrManifestExists = zerr.New("manifest already exists")

	// ErrManifestNotFound is returned when a command needs a manifest that is absent.
	ErrManifestNotFound = zerr.New("manifest not found")

	// ErrLockNotFound is returned when a command needs a lock file that is absent.
	ErrLockNotFound = zerr.New("lock file not found")

	// ErrDependencyNotFound is returned when removing a dependency the manifest does not pin.
	ErrDependencyNotFound = zerr.New("dependency not found in manifest")

	// ErrLockOutOfDate is returned when the lock file disagrees with the manifest.
	ErrLockOutOfDate = zerr.New("lock file is out of date with manifest")
)

// Project is a package directory.
type Project struct {
	fs       afero.Fs
	dir      string
	cfg      config.Config
	log      *zap.SugaredLogger
	resolver *resolver.Resolver
}

// New creates a project rooted at dir.
func New(fsys afero.Fs, dir string, cfg config.Config, log *zap.SugaredLogger) *Project {
	return &Project{
		fs:       fsys,
		dir:      dir,
		cfg:      cfg,
		log:      log,
		resolver: resolver.NewResolver(),
	}
}

// Dir returns the project directory.
func (p *Project) Dir() string { return p.dir }

// FS returns the filesystem the project lives on.
func (p *Project) FS() afero.Fs { return p.fs }

// ManifestPath returns the manifest location.
func (p *Project) ManifestPath() string {
	return filepath.Join(p.dir, p.cfg.ManifestFile)
}

// LockPath returns the lock file location, a sibling of the manifest.
func (p *Project) LockPath() string {
	return filepath.Join(p.dir, p.cfg.LockFile)
}

// Init writes a new manifest. name defaults to the directory's base name.
func (p *Project) Init(name string) (*manifest.Manifest, error) {
	path := p.ManifestPath()
	exists, err := manifest.Exists(p.fs, path)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, zerr.With(ErrManifestExists, "path", path)
	}

	if name == "" {
		name = p.defaultName()
	}
	m := manifest.New(name, p.cfg.ManifestDefaults())
	if err := manifest.Save(p.fs, path, m); err != nil {
		return nil, err
	}
	p.log.Infow("created manifest", "path", path, "package", name, "profile", m.Package.ProfileVersion)
	return m, nil
}

func (p *Project) defaultName() string {
	base := filepath.Base(filepath.Clean(p.dir))
	switch base {
	case ".", string(filepath.Separator), "":
		return p.cfg.DefaultPackageName
	}
	return base
}

// Manifest loads the project manifest.
func (p *Project) Manifest() (*manifest.Manifest, error) {
	path := p.ManifestPath()
	exists, err := manifest.Exists(p.fs, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, zerr.With(ErrManifestNotFound, "path", path)
	}
	return manifest.Load(p.fs, path, p.cfg.Profile())
}

// Lock loads the project lock file.
func (p *Project) Lock() (*lockfile.Lockfile, error) {
	path := p.LockPath()
	exists, err := afero.Exists(p.fs, path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, lockfile.ErrReadFailed.Error()), "path", path)
	}
	if !exists {
		return nil, zerr.With(ErrLockNotFound, "path", path)
	}
	return lockfile.Load(p.fs, path)
}

// Add pins name to version in the manifest and regenerates the lock file.
func (p *Project) Add(name, version string, seed *uint64) (*lockfile.Lockfile, error) {
	m, err := p.Manifest()
	if err != nil {
		return nil, err
	}

	if _, err := semver.StrictNewVersion(version); err != nil {
		p.log.Warnw("version is not strict semver; pinning it verbatim", "dependency", name, "version", version)
	}

	if prev, replaced := m.Set(name, version); replaced {
		p.log.Infow("replaced dependency", "dependency", name, "from", prev, "to", version)
	}
	if err := manifest.Save(p.fs, p.ManifestPath(), m); err != nil {
		return nil, err
	}
	lock, err := p.resolve(m, seed)
	if err != nil {
		return nil, err
	}
	if d, ok := lock.Find(name); ok {
		p.log.Debugw("locked dependency", "dependency", d.Name, "checksum", d.Checksum, "source", d.Source)
	}
	return lock, nil
}

// AddStdlib pins the standard library for the manifest's profile and
// regenerates the lock file.
func (p *Project) AddStdlib(seed *uint64) ([]dist.Pin, error) {
	m, err := p.Manifest()
	if err != nil {
		return nil, err
	}
	pins := m.AddStdlib(p.cfg.Stdlib.Version)
	if err := manifest.Save(p.fs, p.ManifestPath(), m); err != nil {
		return nil, err
	}
	if _, err := p.resolve(m, seed); err != nil {
		return nil, err
	}
	return pins, nil
}

// Remove deletes a pin from the manifest and regenerates the lock file.
func (p *Project) Remove(name string, seed *uint64) (*lockfile.Lockfile, error) {
	m, err := p.Manifest()
	if err != nil {
		return nil, err
	}
	if !m.Remove(name) {
		return nil, zerr.With(ErrDependencyNotFound, "dependency", name)
	}
	if err := manifest.Save(p.fs, p.ManifestPath(), m); err != nil {
		return nil, err
	}
	return p.resolve(m, seed)
}

// Update regenerates the lock file from the manifest without modifying it.
func (p *Project) Update(seed *uint64) (*lockfile.Lockfile, error) {
	m, err := p.Manifest()
	if err != nil {
		return nil, err
	}
	return p.resolve(m, seed)
}

func (p *Project) resolve(m *manifest.Manifest, seed *uint64) (*lockfile.Lockfile, error) {
	lock := p.resolver.Resolve(m, seed)
	if lock.Seeded() {
		p.log.Debugw("seeded ordering", "seed", *lock.Seed, "algorithm", ordering.Algorithm)
	}
	if err := lockfile.Save(p.fs, p.LockPath(), lock); err != nil {
		return nil, err
	}
	p.log.Infow("updated lock file", "path", p.LockPath(), "dependencies", len(lock.Dependencies))
	return lock, nil
}

// Verify checks the existing lock file against the manifest without writing
// anything. A disagreement is reported as ErrLockOutOfDate joined with the
// *validate.Error listing every discrepancy.
func (p *Project) Verify(opts validate.Options) error {
	m, err := p.Manifest()
	if err != nil {
		return err
	}
	lock, err := p.Lock()
	if err != nil {
		return err
	}
	if err := validate.Check(m, lock, opts); err != nil {
		return errors.Join(ErrLockOutOfDate, err)
	}
	p.log.Debugw("lock file matches manifest", "dependencies", len(m.Dependencies))
	return nil
}

// Build prepares a reproducible build. With a seed the lock file is
// regenerated first; the lock file is then validated against the manifest.
func (p *Project) Build(seed *uint64, opts validate.Options) error {
	if seed != nil {
		if _, err := p.Update(seed); err != nil {
			return err
		}
	}
	return p.Verify(opts)
}
