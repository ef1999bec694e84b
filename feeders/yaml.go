package feeders

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YamlFeeder reads a YAML file into a struct using its `yaml` tags.
type YamlFeeder struct {
	Path string
}

// NewYamlFeeder creates a new YamlFeeder that reads from the specified YAML file
func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// Feed decodes the file into structure. Keys absent from the file leave the
// corresponding fields untouched.
func (y YamlFeeder) Feed(structure any) error {
	if y.Path == "" {
		return ErrFilePathEmpty
	}
	data, err := os.ReadFile(y.Path)
	if err != nil {
		return fmt.Errorf("failed to read YAML: %w", err)
	}
	if err := yaml.Unmarshal(data, structure); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrYamlDecode, y.Path, err)
	}
	return nil
}
