package manifest

import (
	"errors"
	"io/fs"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"go.trai.ch/zerr"

	"github.com/frederic-klein/dustpkg/internal/dist"
)

// Parse decodes and validates manifest text. A missing profile_version is
// filled in with defaultProfile.
func Parse(data []byte, defaultProfile dist.Profile) (*Manifest, error) {
	if err := validateData(data); err != nil {
		return nil, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, zerr.Wrap(err, ErrParseFailed.Error())
	}
	if m.Package.ProfileVersion == "" {
		m.Package.ProfileVersion = defaultProfile
	}
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]string)
	}
	return &m, nil
}

// Marshal encodes the manifest as TOML.
func Marshal(m *Manifest) ([]byte, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, zerr.Wrap(err, ErrMarshalFailed.Error())
	}
	return data, nil
}

// Load reads the manifest at path.
func Load(fsys afero.Fs, path string, defaultProfile dist.Profile) (*Manifest, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", path)
	}
	m, err := Parse(data, defaultProfile)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

// Validate checks m against the manifest schema as it would be written.
func (m *Manifest) Validate() error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	return validateData(data)
}

func validateData(data []byte) error {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return zerr.Wrap(err, ErrParseFailed.Error())
	}
	if err := validateDocument(doc); err != nil {
		return zerr.Wrap(err, ErrSchemaInvalid.Error())
	}
	return nil
}

// Save writes the manifest to path, replacing any existing file. A manifest
// that Load would reject is not written.
func Save(fsys afero.Fs, path string, m *Manifest) error {
	data, err := Marshal(m)
	if err != nil {
		return err
	}
	if err := validateData(data); err != nil {
		return zerr.With(err, "path", path)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(err, ErrWriteFailed.Error()), "path", path)
	}
	return nil
}

// Exists reports whether a manifest file is present at path.
func Exists(fsys afero.Fs, path string) (bool, error) {
	_, err := fsys.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", path)
}
