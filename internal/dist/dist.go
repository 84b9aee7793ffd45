package dist

// Pin is a single exact dependency request: a name pinned to one version.
type Pin struct {
	Name    string // e.g., "serde"
	Version string // e.g., "1.0.0", opaque
}

// Profile selects the Dust language version a package targets.
type Profile string

const (
	Profile01 Profile = "0.1"
	Profile02 Profile = "0.2"

	// DefaultProfile is used by initializers and for manifests that omit
	// profile_version.
	DefaultProfile = Profile02
)

// Profiles lists every supported profile, oldest first.
var Profiles = []Profile{Profile01, Profile02}

// Valid reports whether p is a supported profile.
func (p Profile) Valid() bool {
	for _, known := range Profiles {
		if p == known {
			return true
		}
	}
	return false
}

// Stdlib pins injected into manifests by add-stdlib.
const (
	StdlibName    = "dustlib"
	StdlibKName   = "dustlib_k"
	StdlibVersion = "0.2.0"
)

// StdlibPins returns the standard library pins for the given profile.
// Every profile gets the core library; Profile02 also gets the K-regime library.
func StdlibPins(p Profile, version string) []Pin {
	pins := []Pin{{Name: StdlibName, Version: version}}
	if p == Profile02 {
		pins = append(pins, Pin{Name: StdlibKName, Version: version})
	}
	return pins
}
