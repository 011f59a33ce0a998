package listmeta

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

//go:embed config.schema.json
var configSchemaJSON []byte

var (
	configSchemaOnce     sync.Once
	configSchemaResolved *jsonschema.Resolved
	configSchemaErr      error
)

func resolvedConfigSchema() (*jsonschema.Resolved, error) {
	configSchemaOnce.Do(func() {
		var schema jsonschema.Schema
		if err := json.Unmarshal(configSchemaJSON, &schema); err != nil {
			configSchemaErr = fmt.Errorf("failed to unmarshal config schema: %w", err)
			return
		}
		configSchemaResolved, configSchemaErr = schema.Resolve(&jsonschema.ResolveOptions{})
		if configSchemaErr != nil {
			configSchemaErr = fmt.Errorf("failed to resolve config schema: %w", configSchemaErr)
		}
	})
	return configSchemaResolved, configSchemaErr
}

// ParseConfig overlays the JSON document in data onto DefaultConfig. The
// document is checked against the embedded config schema before decoding and
// the result is validated with Config.Validate.
func ParseConfig(data []byte) (*Config, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	resolved, err := resolvedConfigSchema()
	if err != nil {
		return nil, err
	}
	if err := resolved.Validate(doc); err != nil {
		return nil, fmt.Errorf("config does not match schema: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads a JSON config file. An empty path yields DefaultConfig.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return ParseConfig(data)
}
