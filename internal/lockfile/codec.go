package lockfile

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/dustpkg/internal/manifest"
)

// Format selects a lock file rendering.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported renderings; TOML is the on-disk format.
var Formats = []Format{FormatTOML, FormatYAML, FormatJSON}

// document is the TOML shape of a lock file. TOML integers are signed 64-bit,
// so seeds above math.MaxInt64 are written as decimal strings.
type document struct {
	Seed         any                  `toml:"seed,omitempty"`
	Package      manifest.PackageInfo `toml:"package"`
	Dependencies []LockedDep          `toml:"dependencies"`
}

func toDocument(l *Lockfile) document {
	doc := document{Package: l.Package, Dependencies: l.Dependencies}
	if l.Seed != nil {
		if *l.Seed <= math.MaxInt64 {
			doc.Seed = int64(*l.Seed)
		} else {
			doc.Seed = strconv.FormatUint(*l.Seed, 10)
		}
	}
	return doc
}

func fromDocument(doc document) (*Lockfile, error) {
	l := &Lockfile{Package: doc.Package, Dependencies: doc.Dependencies}
	if l.Dependencies == nil {
		l.Dependencies = []LockedDep{}
	}

	switch v := doc.Seed.(type) {
	case nil:
	case int64:
		if v < 0 {
			return nil, fmt.Errorf("seed %d is negative", v)
		}
		s := uint64(v)
		l.Seed = &s
	case string:
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", v, err)
		}
		l.Seed = &s
	default:
		return nil, fmt.Errorf("seed has unsupported type %T", v)
	}
	return l, nil
}

// Marshal encodes the lock file as TOML.
func Marshal(l *Lockfile) ([]byte, error) {
	data, err := toml.Marshal(toDocument(l))
	if err != nil {
		return nil, zerr.Wrap(err, ErrMarshalFailed.Error())
	}
	return data, nil
}

// Unmarshal decodes TOML lock file text.
func Unmarshal(data []byte) (*Lockfile, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, ErrParseFailed.Error())
	}
	l, err := fromDocument(doc)
	if err != nil {
		return nil, zerr.Wrap(err, ErrParseFailed.Error())
	}
	return l, nil
}

// Load reads the lock file at path.
func Load(fsys afero.Fs, path string) (*Lockfile, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", path)
	}
	l, err := Unmarshal(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return l, nil
}

// Save writes the lock file to path, replacing any existing file.
func Save(fsys afero.Fs, path string, l *Lockfile) error {
	data, err := Marshal(l)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, ErrWriteFailed.Error()), "path", path)
	}
	return nil
}

// Encode renders the lock file to w in the given format.
func Encode(w io.Writer, l *Lockfile, format Format) error {
	switch format {
	case FormatTOML, "":
		data, err := Marshal(l)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return zerr.Wrap(err, ErrMarshalFailed.Error())
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(l); err != nil {
			return zerr.Wrap(err, ErrMarshalFailed.Error())
		}
		return nil
	default:
		return zerr.With(ErrUnknownFormat, "format", string(format))
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", zerr.With(ErrUnknownFormat, "format", s)
}
