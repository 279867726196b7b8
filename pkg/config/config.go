// Package config loads YAML configuration files with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is implemented by configuration types that can check themselves.
type Validator interface {
	Validate() error
}

// Load reads filename into target, expanding ${VAR} references first, applies
// overrides in order, and validates the result when target implements
// Validator.
func Load[T any](filename string, target *T, overrides ...func(*T)) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", filename, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), target); err != nil {
		return fmt.Errorf("config: parse %s: %w", filename, err)
	}

	return finish(target, overrides)
}

// LoadOptional behaves like Load but keeps the values already in target when
// filename does not exist. Overrides and validation run in both cases.
func LoadOptional[T any](filename string, target *T, overrides ...func(*T)) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return finish(target, overrides)
	}
	return Load(filename, target, overrides...)
}

func finish[T any](target *T, overrides []func(*T)) error {
	for _, o := range overrides {
		o(target)
	}
	return validate(target)
}

func validate[T any](target *T) error {
	if v, ok := any(target).(Validator); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("config: validation failed: %w", err)
		}
	}
	return nil
}
