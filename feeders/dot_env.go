package feeders

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// DotEnvFeeder reads a .env file and populates `env` tagged fields from it.
// Variables already present in the process environment win over the file,
// and the process environment itself is never modified.
type DotEnvFeeder struct {
	Path   string
	Prefix string
}

// NewDotEnvFeeder creates a new DotEnvFeeder that reads from the specified .env file
func NewDotEnvFeeder(filePath, prefix string) DotEnvFeeder {
	return DotEnvFeeder{Path: filePath, Prefix: prefix}
}

// Feed parses the file and populates structure.
func (f DotEnvFeeder) Feed(structure any) error {
	if f.Path == "" {
		return ErrFilePathEmpty
	}
	vars, err := godotenv.Read(f.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDotEnvFileUnreadable, f.Path, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}
	return feedStruct(structure, f.Prefix, lookup)
}
