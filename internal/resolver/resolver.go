package resolver

import (
	"github.com/frederic-klein/dustpkg/internal/checksum"
	"github.com/frederic-klein/dustpkg/internal/dist"
	"github.com/frederic-klein/dustpkg/internal/lockfile"
	"github.com/frederic-klein/dustpkg/internal/manifest"
	"github.com/frederic-klein/dustpkg/internal/ordering"
)

// SourceFunc derives the source string recorded for a locked dependency.
type SourceFunc func(dist.Pin) string

// RegistrySource is the default source rule: "registry/<name>-<version>".
func RegistrySource(p dist.Pin) string {
	return "registry/" + p.Name + "-" + p.Version
}

// Resolver turns manifests into lock files. It holds no state between calls
// and is safe for concurrent use.
type Resolver struct {
	source SourceFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSourceFunc replaces the source derivation rule.
func WithSourceFunc(fn SourceFunc) Option {
	return func(r *Resolver) {
		r.source = fn
	}
}

// NewResolver creates a resolver using RegistrySource unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{source: RegistrySource}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve resolves m with the default resolver.
func Resolve(m *manifest.Manifest, seed *uint64) *lockfile.Lockfile {
	return defaultResolver.Resolve(m, seed)
}

// Resolve produces a lock file with exactly one entry per manifest
// dependency, ordered by the ordering engine for the given seed.
func (r *Resolver) Resolve(m *manifest.Manifest, seed *uint64) *lockfile.Lockfile {
	ordered := ordering.Order(m.Pins(), seed)

	deps := make([]lockfile.LockedDep, 0, len(ordered))
	for _, p := range ordered {
		deps = append(deps, lockfile.LockedDep{
			Name:     p.Name,
			Version:  p.Version,
			Checksum: checksum.Sum(p.Name, p.Version),
			Source:   r.source(p),
		})
	}

	lock := &lockfile.Lockfile{
		Package:      m.Package,
		Dependencies: deps,
	}
	if seed != nil {
		s := *seed
		lock.Seed = &s
	}
	return lock
}
