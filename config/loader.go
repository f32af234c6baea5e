package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default} references.
var envPattern = regexp.MustCompile(`\$\{(\w+)(?::-([^}]*))?\}`)

// LoadFromFile loads configuration from a YAML file, expanding
// environment variable references before parsing. Values not present
// in the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := ExpandEnv(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ExpandEnv substitutes ${VAR} and ${VAR:-default} references with
// environment values. Unset variables without a default expand to the
// empty string.
func ExpandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(groups[1]); ok {
			return value
		}
		return groups[2]
	})
}
