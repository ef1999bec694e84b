package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder reads a TOML file into a struct using its `toml` tags.
type TomlFeeder struct {
	Path string
}

func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed decodes the file into structure.
func (t TomlFeeder) Feed(structure any) error {
	if t.Path == "" {
		return ErrFilePathEmpty
	}
	if _, err := toml.DecodeFile(t.Path, structure); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrTomlDecode, t.Path, err)
	}
	return nil
}
