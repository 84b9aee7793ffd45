// Package validate checks that a manifest and a lock file still agree.
package validate

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/frederic-klein/dustpkg/internal/lockfile"
	"github.com/frederic-klein/dustpkg/internal/manifest"
)

// Kind classifies a discrepancy.
type Kind int

const (
	// MissingFromLock: a manifest dependency has no lock entry.
	MissingFromLock Kind = iota + 1
	// VersionMismatch: the lock entry pins a different version.
	VersionMismatch
	// OrphanInLock: a lock entry has no manifest dependency. Reported only
	// when Options.ReportOrphans is set.
	OrphanInLock
)

func (k Kind) String() string {
	switch k {
	case MissingFromLock:
		return "missing-from-lock"
	case VersionMismatch:
		return "version-mismatch"
	case OrphanInLock:
		return "orphan-in-lock"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Discrepancy is one disagreement between manifest and lock file.
type Discrepancy struct {
	Kind            Kind
	Name            string
	ManifestVersion string // empty for OrphanInLock
	LockVersion     string // empty for MissingFromLock
}

func (d Discrepancy) Error() string {
	switch d.Kind {
	case MissingFromLock:
		return fmt.Sprintf("dependency '%s' missing from lock file", d.Name)
	case VersionMismatch:
		return fmt.Sprintf("version mismatch for dependency '%s': manifest %s vs lock %s",
			d.Name, d.ManifestVersion, d.LockVersion)
	case OrphanInLock:
		return fmt.Sprintf("lock entry '%s' (%s) has no manifest dependency", d.Name, d.LockVersion)
	default:
		return fmt.Sprintf("%s: %s", d.Kind, d.Name)
	}
}

// Error carries every discrepancy found by Check.
type Error struct {
	Discrepancies []Discrepancy
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Discrepancies))
	for i, d := range e.Discrepancies {
		msgs[i] = d.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes each discrepancy to errors.As.
func (e *Error) Unwrap() []error {
	errs := make([]error, len(e.Discrepancies))
	for i, d := range e.Discrepancies {
		errs[i] = d
	}
	return errs
}

// Options tunes validation.
type Options struct {
	// ReportOrphans flags lock entries with no manifest dependency.
	ReportOrphans bool
}

// Validate returns every discrepancy between m and lock, sorted by name.
// Lock entries without a manifest dependency are ignored.
func Validate(m *manifest.Manifest, lock *lockfile.Lockfile) []Discrepancy {
	return ValidateWith(m, lock, Options{})
}

// ValidateWith is Validate with options.
func ValidateWith(m *manifest.Manifest, lock *lockfile.Lockfile, opts Options) []Discrepancy {
	locked := lock.Index()

	var out []Discrepancy
	for _, p := range m.Pins() {
		entry, ok := locked[p.Name]
		switch {
		case !ok:
			out = append(out, Discrepancy{Kind: MissingFromLock, Name: p.Name, ManifestVersion: p.Version})
		case entry.Version != p.Version:
			out = append(out, Discrepancy{
				Kind:            VersionMismatch,
				Name:            p.Name,
				ManifestVersion: p.Version,
				LockVersion:     entry.Version,
			})
		}
	}

	if opts.ReportOrphans {
		for name, entry := range locked {
			if _, ok := m.Dependencies[name]; !ok {
				out = append(out, Discrepancy{Kind: OrphanInLock, Name: name, LockVersion: entry.Version})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Kind < out[j].Kind
	})
	return out
}

// Check returns nil when m and lock agree, otherwise an *Error.
func Check(m *manifest.Manifest, lock *lockfile.Lockfile, opts Options) error {
	if ds := ValidateWith(m, lock, opts); len(ds) > 0 {
		return &Error{Discrepancies: ds}
	}
	return nil
}

// WriteReport writes one line per discrepancy.
func WriteReport(w io.Writer, ds []Discrepancy) error {
	for _, d := range ds {
		if _, err := fmt.Fprintf(w, "  %-17s %s\n", d.Kind, d.Error()); err != nil {
			return err
		}
	}
	return nil
}
