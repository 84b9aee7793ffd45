// Package manifest reads and writes Dust.toml, the declared package identity
// plus its direct dependency pins.
package manifest

import (
	"slices"
	"strings"

	"github.com/frederic-klein/dustpkg/internal/dist"
)

// DefaultFileName is the conventional manifest file name.
const DefaultFileName = "Dust.toml"

// PackageInfo identifies a project.
type PackageInfo struct {
	Name           string       `toml:"name" json:"name" yaml:"name"`
	Version        string       `toml:"version" json:"version" yaml:"version"`
	ProfileVersion dist.Profile `toml:"profile_version" json:"profile_version" yaml:"profile_version"`
}

// Manifest is the in-memory form of Dust.toml. Dependencies maps a dependency
// name to the single version it is pinned to.
type Manifest struct {
	Package      PackageInfo       `toml:"package"`
	Dependencies map[string]string `toml:"dependencies"`
}

// Defaults holds the values an initializer writes into a new manifest.
type Defaults struct {
	Version string
	Profile dist.Profile
}

// New creates a manifest for a package with no dependencies.
func New(name string, d Defaults) *Manifest {
	return &Manifest{
		Package: PackageInfo{
			Name:           name,
			Version:        d.Version,
			ProfileVersion: d.Profile,
		},
		Dependencies: make(map[string]string),
	}
}

// Set pins name to version, replacing any previous pin. It returns the
// previous version and whether one existed.
func (m *Manifest) Set(name, version string) (string, bool) {
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]string)
	}
	prev, ok := m.Dependencies[name]
	m.Dependencies[name] = version
	return prev, ok
}

// Remove deletes the pin for name and reports whether it existed.
func (m *Manifest) Remove(name string) bool {
	if _, ok := m.Dependencies[name]; !ok {
		return false
	}
	delete(m.Dependencies, name)
	return true
}

// AddStdlib pins the standard library packages for the manifest's profile
// and returns the pins that were applied.
func (m *Manifest) AddStdlib(version string) []dist.Pin {
	pins := dist.StdlibPins(m.Package.ProfileVersion, version)
	for _, p := range pins {
		m.Set(p.Name, p.Version)
	}
	return pins
}

// Pins projects the dependency map into a set of pins sorted by name.
func (m *Manifest) Pins() []dist.Pin {
	pins := make([]dist.Pin, 0, len(m.Dependencies))
	for name, version := range m.Dependencies {
		pins = append(pins, dist.Pin{Name: name, Version: version})
	}
	slices.SortFunc(pins, func(a, b dist.Pin) int {
		return strings.Compare(a.Name, b.Name)
	})
	return pins
}
