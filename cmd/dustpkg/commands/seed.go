package commands

import (
	"strconv"

	"github.com/spf13/pflag"
	"go.trai.ch/zerr"
)

// ErrInvalidSeed is returned for a --seed value that is not an unsigned 64-bit integer.
var ErrInvalidSeed = zerr.New("invalid seed")

var _ pflag.Value = (*seedValue)(nil)

// seedValue is an optional uint64 flag: unset and --seed 0 are different.
type seedValue struct {
	seed *uint64
}

func (s *seedValue) String() string {
	if s.seed == nil {
		return ""
	}
	return strconv.FormatUint(*s.seed, 10)
}

// Set accepts decimal, 0x hex, 0o octal and 0b binary.
func (s *seedValue) Set(v string) error {
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return zerr.With(zerr.Wrap(err, ErrInvalidSeed.Error()), "value", v)
	}
	s.seed = &n
	return nil
}

func (s *seedValue) Type() string { return "uint64" }

// Get returns the parsed seed, or nil when the flag was not given.
func (s *seedValue) Get() *uint64 { return s.seed }

func addSeedFlag(fs *pflag.FlagSet, s *seedValue, usage string) {
	fs.Var(s, "seed", usage)
}
