// Package feeders provides configuration feeders for reading data from
// environment variables, .env files, YAML and TOML files.
package feeders

import (
	"errors"
	"fmt"
)

// Env and DotEnv feeder errors
var (
	ErrEnvInvalidStructure  = errors.New("env: expected pointer to struct")
	ErrEnvFieldCannotBeSet  = errors.New("env: field cannot be set")
	ErrEnvUnsupportedType   = errors.New("env: unsupported field type")
	ErrDotEnvFileUnreadable = errors.New("dotenv: file cannot be read")
)

// File feeder errors
var (
	ErrFilePathEmpty = errors.New("file feeder: path is empty")
	ErrYamlDecode    = errors.New("yaml: decode failed")
	ErrTomlDecode    = errors.New("toml: decode failed")
)

func wrapStructureError(got any) error {
	return fmt.Errorf("%w, got %T", ErrEnvInvalidStructure, got)
}

func wrapFieldError(envName string, err error) error {
	return fmt.Errorf("field for %s: %w", envName, err)
}
