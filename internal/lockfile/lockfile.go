// Package lockfile defines dustpkg.lock, the resolved and ordered install
// plan, and its on-disk encoding.
package lockfile

import (
	"github.com/frederic-klein/dustpkg/internal/dist"
	"github.com/frederic-klein/dustpkg/internal/manifest"
)

// DefaultFileName is the conventional lock file name, a sibling of the manifest.
const DefaultFileName = "dustpkg.lock"

// LockedDep is one resolved dependency.
type LockedDep struct {
	Name     string `toml:"name" json:"name" yaml:"name"`
	Version  string `toml:"version" json:"version" yaml:"version"`
	Checksum string `toml:"checksum" json:"checksum" yaml:"checksum"`
	Source   string `toml:"source" json:"source" yaml:"source"`
}

// Lockfile is the resolved snapshot of a manifest. Dependencies are kept in
// the order the resolver produced; Seed is set only for seeded resolves.
type Lockfile struct {
	Seed         *uint64              `json:"seed,omitempty" yaml:"seed,omitempty"`
	Package      manifest.PackageInfo `json:"package" yaml:"package"`
	Dependencies []LockedDep          `json:"dependencies" yaml:"dependencies"`
}

// Find returns the entry for name.
func (l *Lockfile) Find(name string) (LockedDep, bool) {
	for _, d := range l.Dependencies {
		if d.Name == name {
			return d, true
		}
	}
	return LockedDep{}, false
}

// Index maps each entry by name. If a hand-edited lock repeats a name, the
// first entry wins, matching Find.
func (l *Lockfile) Index() map[string]LockedDep {
	idx := make(map[string]LockedDep, len(l.Dependencies))
	for _, d := range l.Dependencies {
		if _, ok := idx[d.Name]; !ok {
			idx[d.Name] = d
		}
	}
	return idx
}

// Pins returns the (name, version) pairs in lock order.
func (l *Lockfile) Pins() []dist.Pin {
	pins := make([]dist.Pin, len(l.Dependencies))
	for i, d := range l.Dependencies {
		pins[i] = dist.Pin{Name: d.Name, Version: d.Version}
	}
	return pins
}

// Seeded reports whether the lock was produced by a seeded resolve.
func (l *Lockfile) Seeded() bool {
	return l.Seed != nil
}
