package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Conventional file names looked up relative to the working directory.
const (
	DotenvFile = ".env"
	YAMLFile   = "gigachat.yaml"
)

// Layer is one named source of configuration values.
type Layer struct {
	Name   string
	Values map[string]string
}

// DotenvLayer reads KEY=VALUE pairs from path without touching the process
// environment. A missing file yields an empty layer.
func DotenvLayer(path string) (Layer, error) {
	layer := Layer{Name: path, Values: map[string]string{}}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return layer, nil
		}
		return layer, fmt.Errorf("read %s: %w", path, err)
	}
	layer.Values = values
	return layer, nil
}

// YAMLLayer reads a flat mapping of keys to scalar values from path.
// A missing file yields an empty layer.
func YAMLLayer(path string) (Layer, error) {
	layer := Layer{Name: path, Values: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return layer, nil
		}
		return layer, fmt.Errorf("read %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return layer, fmt.Errorf("parse %s: %w", path, err)
	}
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			layer.Values[key] = ""
		case string:
			layer.Values[key] = v
		case bool, int, int64, uint64, float64:
			layer.Values[key] = fmt.Sprint(v)
		default:
			return layer, fmt.Errorf("parse %s: key %s: expected scalar, got %T", path, key, value)
		}
	}
	return layer, nil
}

// EnvironLayer converts KEY=VALUE entries, as returned by os.Environ, to a layer.
func EnvironLayer(environ []string) Layer {
	layer := Layer{Name: "environment", Values: make(map[string]string, len(environ))}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		layer.Values[key] = value
	}
	return layer
}

// OverrideLayer wraps explicit values that take precedence over every file
// and the environment.
func OverrideLayer(values map[string]string) Layer {
	layer := Layer{Name: "overrides", Values: make(map[string]string, len(values))}
	for k, v := range values {
		layer.Values[k] = v
	}
	return layer
}

// Merge flattens layers in order; a key in a later layer wins even when its
// value is empty.
func Merge(layers ...Layer) map[string]string {
	merged := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer.Values {
			merged[k] = v
		}
	}
	return merged
}

// Load resolves configuration from the conventional sources, lowest
// precedence first: gigachat.yaml, .env, environ, overrides. Broken files are
// skipped and reported in Config.Warnings.
func Load(dir string, environ []string, overrides map[string]string) Config {
	var warnings []string
	layers := make([]Layer, 0, 4)

	yamlLayer, err := YAMLLayer(filepath.Join(dir, YAMLFile))
	if err != nil {
		warnings = append(warnings, err.Error())
	} else {
		layers = append(layers, yamlLayer)
	}

	dotenvLayer, err := DotenvLayer(filepath.Join(dir, DotenvFile))
	if err != nil {
		warnings = append(warnings, err.Error())
	} else {
		layers = append(layers, dotenvLayer)
	}

	layers = append(layers, EnvironLayer(environ))
	if len(overrides) > 0 {
		layers = append(layers, OverrideLayer(overrides))
	}

	cfg := Resolve(Merge(layers...))
	cfg.Warnings = append(warnings, cfg.Warnings...)
	return cfg
}
