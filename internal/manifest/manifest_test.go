package manifest

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/dustpkg/internal/dist"
)

var testDefaults = Defaults{Version: "0.1.0", Profile: dist.Profile02}

func TestNew(t *testing.T) {
	m := New("hello_dust", testDefaults)

	assert.Equal(t, "hello_dust", m.Package.Name)
	assert.Equal(t, "0.1.0", m.Package.Version)
	assert.Equal(t, dist.Profile02, m.Package.ProfileVersion)
	assert.NotNil(t, m.Dependencies)
	assert.Empty(t, m.Dependencies)
}

func TestNew_ProfileOverride(t *testing.T) {
	m := New("legacy", Defaults{Version: "1.0.0", Profile: dist.Profile01})
	assert.Equal(t, dist.Profile01, m.Package.ProfileVersion)
}

func TestManifest_Set(t *testing.T) {
	m := New("p", testDefaults)

	prev, replaced := m.Set("serde", "1.0.0")
	assert.False(t, replaced)
	assert.Empty(t, prev)

	prev, replaced = m.Set("serde", "1.0.1")
	assert.True(t, replaced)
	assert.Equal(t, "1.0.0", prev)

	assert.Len(t, m.Dependencies, 1)
	assert.Equal(t, "1.0.1", m.Dependencies["serde"])
}

func TestManifest_SetNilMap(t *testing.T) {
	var m Manifest
	m.Set("rand", "0.8.5")
	assert.Equal(t, map[string]string{"rand": "0.8.5"}, m.Dependencies)
}

func TestManifest_Remove(t *testing.T) {
	m := New("p", testDefaults)
	m.Set("serde", "1.0.0")

	assert.True(t, m.Remove("serde"))
	assert.False(t, m.Remove("serde"))
	assert.Empty(t, m.Dependencies)
}

func TestManifest_AddStdlib(t *testing.T) {
	tests := []struct {
		name    string
		profile dist.Profile
		want    map[string]string
	}{
		{
			name:    "profile 0.2 adds k-regime library",
			profile: dist.Profile02,
			want:    map[string]string{"dustlib": "0.2.0", "dustlib_k": "0.2.0"},
		},
		{
			name:    "profile 0.1 adds core library only",
			profile: dist.Profile01,
			want:    map[string]string{"dustlib": "0.2.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New("p", Defaults{Version: "0.1.0", Profile: tt.profile})
			pins := m.AddStdlib(dist.StdlibVersion)
			assert.Len(t, pins, len(tt.want))
			assert.Equal(t, tt.want, m.Dependencies)
		})
	}
}

func TestManifest_Pins(t *testing.T) {
	m := New("p", testDefaults)
	m.Set("serde", "1.0.0")
	m.Set("rand", "0.8.5")

	assert.Equal(t, []dist.Pin{
		{Name: "rand", Version: "0.8.5"},
		{Name: "serde", Version: "1.0.0"},
	}, m.Pins())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *Manifest
	}{
		{
			name: "full",
			content: `[package]
name = "hello_dust"
version = "0.1.0"
profile_version = "0.1"

[dependencies]
serde = "1.0.0"
rand = "0.8.5"
`,
			want: &Manifest{
				Package:      PackageInfo{Name: "hello_dust", Version: "0.1.0", ProfileVersion: dist.Profile01},
				Dependencies: map[string]string{"serde": "1.0.0", "rand": "0.8.5"},
			},
		},
		{
			name: "missing profile uses default",
			content: `[package]
name = "hello_dust"
version = "0.1.0"
`,
			want: &Manifest{
				Package:      PackageInfo{Name: "hello_dust", Version: "0.1.0", ProfileVersion: dist.Profile02},
				Dependencies: map[string]string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.content), dist.DefaultProfile)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "not toml",
			content: `[package`,
			wantErr: ErrParseFailed,
		},
		{
			name:    "missing package",
			content: "[dependencies]\nserde = \"1.0.0\"\n",
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "empty name",
			content: "[package]\nname = \"\"\nversion = \"0.1.0\"\n",
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "unknown profile",
			content: "[package]\nname = \"p\"\nversion = \"0.1.0\"\nprofile_version = \"0.3\"\n",
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "non-string version pin",
			content: "[package]\nname = \"p\"\nversion = \"0.1.0\"\n\n[dependencies]\nserde = 1\n",
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "empty version pin",
			content: "[package]\nname = \"p\"\nversion = \"0.1.0\"\n\n[dependencies]\nserde = \"\"\n",
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "empty dependency name",
			content: "[package]\nname = \"p\"\nversion = \"0.1.0\"\n\n[dependencies]\n\"\" = \"1.0.0\"\n",
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "separator in dependency name",
			content: "[package]\nname = \"p\"\nversion = \"0.1.0\"\n\n[dependencies]\n\"a@b\" = \"1.0.0\"\n",
			wantErr: ErrSchemaInvalid,
		},
		{
			name:    "unknown top-level table",
			content: "[package]\nname = \"p\"\nversion = \"0.1.0\"\n\n[build]\nx = \"y\"\n",
			wantErr: ErrSchemaInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), dist.DefaultProfile)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr.Error())
		})
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		dep     string
		version string
	}{
		{name: "empty version", dep: "serde", version: ""},
		{name: "empty name", dep: "", version: "1.0.0"},
		{name: "separator in name", dep: "a@b", version: "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			m := New("p", testDefaults)
			m.Set(tt.dep, tt.version)

			assert.ErrorContains(t, m.Validate(), ErrSchemaInvalid.Error())

			err := Save(fsys, "/p/Dust.toml", m)
			require.Error(t, err)
			assert.ErrorContains(t, err, ErrSchemaInvalid.Error())

			ok, err := Exists(fsys, "/p/Dust.toml")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestValidate(t *testing.T) {
	m := New("p", testDefaults)
	m.Set("serde", "1.0.0")
	m.Set("legacy", "v1")
	assert.NoError(t, m.Validate())
}

func TestSchemaErrors_UseFixedURL(t *testing.T) {
	_, err := Parse([]byte("[package]\nname = \"\"\nversion = \"0.1.0\"\n"), dist.DefaultProfile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), schemaURL)
	assert.NotContains(t, err.Error(), "file://")
}

func TestLoadSaveRoundTrip(t *testing.T) {
	fsys := afero.NewMemMapFs()
	m := New("hello_dust", testDefaults)
	m.Set("serde", "1.0.0")
	m.Set("rand", "0.8.5")

	require.NoError(t, Save(fsys, "/proj/Dust.toml", m))

	data, err := afero.ReadFile(fsys, "/proj/Dust.toml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "[package]")
	assert.Contains(t, string(data), "[dependencies]")

	got, err := Load(fsys, "/proj/Dust.toml", dist.Profile01)
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "/nope/Dust.toml", dist.DefaultProfile)
	require.Error(t, err)
	assert.ErrorContains(t, err, ErrReadFailed.Error())
}

func TestExists(t *testing.T) {
	fsys := afero.NewMemMapFs()

	ok, err := Exists(fsys, "/p/Dust.toml")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, Save(fsys, "/p/Dust.toml", New("p", testDefaults)))
	ok, err = Exists(fsys, "/p/Dust.toml")
	require.NoError(t, err)
	assert.True(t, ok)
}
