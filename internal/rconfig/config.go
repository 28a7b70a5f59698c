// Package rconfig loads resolver configuration from a YAML, TOML, or JSON
// file, chosen by its extension, the way the teacher's own thresholds
// package keys its decoder off the config file's suffix. The decoded
// document is validated against an embedded JSON schema before being
// mapped onto resolver.Options, so a malformed config fails fast with a
// pointer to the offending field rather than surfacing as a mysterious
// resolution failure later.
package rconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// File mirrors the on-disk shape of a resolver config file.
type File struct {
	Root             string   `yaml:"root" toml:"root" json:"root"`
	MainFields       []string `yaml:"mainFields" toml:"mainFields" json:"mainFields"`
	Conditions       []string `yaml:"conditions" toml:"conditions" json:"conditions"`
	Extensions       []string `yaml:"extensions" toml:"extensions" json:"extensions"`
	Dedupe           []string `yaml:"dedupe" toml:"dedupe" json:"dedupe"`
	PreserveSymlinks bool     `yaml:"preserveSymlinks" toml:"preserveSymlinks" json:"preserveSymlinks"`
	AsSrc            bool     `yaml:"asSrc" toml:"asSrc" json:"asSrc"`
}

// schema checks each recognized field's type (strings, booleans, arrays
// of strings) and rejects unrecognized field names, so a typo'd key is
// caught instead of silently ignored.
const schema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "root": {"type": "string"},
    "mainFields": {"type": "array", "items": {"type": "string"}},
    "conditions": {"type": "array", "items": {"type": "string"}},
    "extensions": {"type": "array", "items": {"type": "string"}},
    "dedupe": {"type": "array", "items": {"type": "string"}},
    "preserveSymlinks": {"type": "boolean"},
    "asSrc": {"type": "boolean"}
  }
}`

// Load reads and validates the config file at path, dispatching on its
// extension (".yaml"/".yml", ".toml", ".json").
func Load(path string) (File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	asJSON, err := toJSON(path, raw)
	if err != nil {
		return File{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := validate(asJSON); err != nil {
		return File{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	var cfg File
	if err := json.Unmarshal(asJSON, &cfg); err != nil {
		return File{}, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return cfg, nil
}

func toJSON(path string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return raw, nil
	case ".toml":
		var doc map[string]interface{}
		if err := toml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return json.Marshal(doc)
	default: // .yaml, .yml, and anything unrecognized falls back to YAML
		var doc map[string]interface{}
		decoder := yaml.NewDecoder(bytes.NewReader(raw))
		decoder.KnownFields(false)
		if err := decoder.Decode(&doc); err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		return json.Marshal(doc)
	}
}

func validate(doc []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("run schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	messages := make([]string, 0, len(result.Errors()))
	for _, item := range result.Errors() {
		messages = append(messages, item.String())
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
