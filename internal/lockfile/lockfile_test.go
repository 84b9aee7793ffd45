package lockfile

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/dustpkg/internal/dist"
	"github.com/frederic-klein/dustpkg/internal/manifest"
)

func u64(v uint64) *uint64 { return &v }

func sample(seed *uint64) *Lockfile {
	return &Lockfile{
		Seed: seed,
		Package: manifest.PackageInfo{
			Name:           "hello_dust",
			Version:        "0.1.0",
			ProfileVersion: dist.Profile02,
		},
		Dependencies: []LockedDep{
			{
				Name:     "rand",
				Version:  "0.8.5",
				Checksum: "4b7a1f1f0e0c4a5b8d5e0d9d3b0f6f7e2c1a9b8c7d6e5f4a3b2c1d0e9f8a7b6c",
				Source:   "registry/rand-0.8.5",
			},
			{
				Name:     "serde",
				Version:  "1.0.0",
				Checksum: "00ec0f10a47edffa3c27a256efabf6f6092ef25a141c32796e3184b80daada70",
				Source:   "registry/serde-1.0.0",
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		lock *Lockfile
	}{
		{"unseeded", sample(nil)},
		{"seeded", sample(u64(42))},
		{"zero seed", sample(u64(0))},
		{"max int64 seed", sample(u64(math.MaxInt64))},
		{"max uint64 seed", sample(u64(math.MaxUint64))},
		{"no dependencies", &Lockfile{
			Package:      manifest.PackageInfo{Name: "p", Version: "0.1.0", ProfileVersion: dist.Profile01},
			Dependencies: []LockedDep{},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := Marshal(tt.lock)
			require.NoError(t, err)

			got, err := Unmarshal(data)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.lock, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshal_Deterministic(t *testing.T) {
	first, err := Marshal(sample(u64(42)))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Marshal(sample(u64(42)))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshal_SeedField(t *testing.T) {
	unseeded, err := Marshal(sample(nil))
	require.NoError(t, err)
	assert.NotContains(t, string(unseeded), "seed")

	seeded, err := Marshal(sample(u64(42)))
	require.NoError(t, err)
	assert.Contains(t, string(seeded), "seed = 42")

	// seed must precede every table
	assert.Less(t, strings.Index(string(seeded), "seed"), strings.Index(string(seeded), "[package]"))
}

func TestMarshal_PreservesOrder(t *testing.T) {
	l := sample(nil)
	l.Dependencies[0], l.Dependencies[1] = l.Dependencies[1], l.Dependencies[0]

	data, err := Marshal(l)
	require.NoError(t, err)

	text := string(data)
	assert.Less(t, strings.Index(text, "registry/serde-1.0.0"), strings.Index(text, "registry/rand-0.8.5"))
	assert.Equal(t, 2, strings.Count(text, "[[dependencies]]"))
}

func TestUnmarshal_HandWritten(t *testing.T) {
	text := `seed = 7

[package]
name = "hello_dust"
version = "0.1.0"
profile_version = "0.2"

[[dependencies]]
name = "serde"
version = "1.0.1"
checksum = "abc"
source = "registry/serde-1.0.0"
`
	got, err := Unmarshal([]byte(text))
	require.NoError(t, err)

	require.NotNil(t, got.Seed)
	assert.Equal(t, uint64(7), *got.Seed)
	assert.Equal(t, "hello_dust", got.Package.Name)
	require.Len(t, got.Dependencies, 1)
	assert.Equal(t, "1.0.1", got.Dependencies[0].Version)
}

func TestUnmarshal_Errors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"invalid toml", "[package"},
		{"negative seed", "seed = -1\n"},
		{"non-numeric seed string", "seed = 'abc'\n"},
		{"float seed", "seed = 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.text))
			require.Error(t, err)
			assert.ErrorContains(t, err, ErrParseFailed.Error())
		})
	}
}

func TestLoadSave(t *testing.T) {
	fsys := afero.NewMemMapFs()
	want := sample(u64(42))

	require.NoError(t, Save(fsys, "/proj/dustpkg.lock", want))
	got, err := Load(fsys, "/proj/dustpkg.lock")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Load(fsys, "/proj/missing.lock")
	require.Error(t, err)
	assert.ErrorContains(t, err, ErrReadFailed.Error())
}

func TestEncode(t *testing.T) {
	l := sample(u64(42))

	t.Run("toml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, l, FormatTOML))
		got, err := Unmarshal(buf.Bytes())
		require.NoError(t, err)
		assert.Equal(t, l, got)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, l, FormatYAML))
		var got Lockfile
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, l, &got)
		assert.Contains(t, buf.String(), "profile_version: \"0.2\"")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, l, FormatJSON))
		var got Lockfile
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, l, &got)
	})

	t.Run("unknown", func(t *testing.T) {
		err := Encode(&bytes.Buffer{}, l, Format("xml"))
		require.Error(t, err)
		assert.ErrorContains(t, err, ErrUnknownFormat.Error())
	})
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("ini")
	assert.Error(t, err)
}

func TestFindAndIndex(t *testing.T) {
	l := sample(nil)
	l.Dependencies = append(l.Dependencies, LockedDep{Name: "serde", Version: "9.9.9"})

	d, ok := l.Find("serde")
	require.True(t, ok)
	assert.Equal(t, "1.0.0", d.Version)

	_, ok = l.Find("tokio")
	assert.False(t, ok)

	idx := l.Index()
	assert.Len(t, idx, 2)
	assert.Equal(t, "1.0.0", idx["serde"].Version)
}

func TestPins(t *testing.T) {
	assert.Equal(t, []dist.Pin{
		{Name: "rand", Version: "0.8.5"},
		{Name: "serde", Version: "1.0.0"},
	}, sample(nil).Pins())
}

func TestSeeded(t *testing.T) {
	zero := uint64(0)
	assert.False(t, sample(nil).Seeded())
	assert.True(t, sample(&zero).Seeded())
}
