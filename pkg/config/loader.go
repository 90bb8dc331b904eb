// Package config loads settings for the tlv tools from YAML, JSON, TOML
// and CUE files, using CUE as the common representation.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/encoding/yaml"
	"github.com/pelletier/go-toml/v2"
)

// LoadValueFromReader parses YAML (and so JSON) from r. It backs the
// --config flag, which has no file extension to dispatch on.
func LoadValueFromReader(r io.Reader) (cue.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	return build(cuecontext.New(), ".yaml", data)
}

// LoadValue loads a file or directory as a CUE value.
//
// Directories and .cue files go through load.Instances so packages and
// imports work. Other files are parsed by extension: .toml, .json, and
// YAML for everything else.
func LoadValue(path string) (cue.Value, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to stat path: %w", err)
	}

	ctx := cuecontext.New()
	if fi.IsDir() || strings.EqualFold(filepath.Ext(path), ".cue") {
		return loadInstance(ctx, path, fi.IsDir())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read file: %w", err)
	}
	return build(ctx, strings.ToLower(filepath.Ext(path)), data)
}

// LoadFromFile decodes a file or directory into T.
//
//	cfg, err := LoadFromFile[Codec]("codec.yaml")
//	profiles, err := LoadFromFile[map[string]Codec]("profiles.toml")
func LoadFromFile[T any](path string) (*T, error) {
	val, err := LoadValue(path)
	if err != nil {
		return nil, err
	}

	var out T
	if err := val.Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &out, nil
}

func loadInstance(ctx *cue.Context, path string, dir bool) (cue.Value, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to resolve path: %w", err)
	}

	cfg := &load.Config{Dir: filepath.Dir(abs), DataFiles: true}
	args := []string{abs}
	if dir {
		cfg.Dir = abs
		args = []string{"."}
	}

	instances := load.Instances(args, cfg)
	if len(instances) == 0 {
		return cue.Value{}, fmt.Errorf("no instances loaded from %s", path)
	}
	if err := instances[0].Err; err != nil {
		return cue.Value{}, fmt.Errorf("failed to load config: %w", err)
	}
	return check(ctx.BuildInstance(instances[0]))
}

// build parses data according to ext.
func build(ctx *cue.Context, ext string, data []byte) (cue.Value, error) {
	switch ext {
	case ".toml":
		var m map[string]any
		if err := toml.Unmarshal(data, &m); err != nil {
			return cue.Value{}, fmt.Errorf("failed to parse TOML: %w", err)
		}
		return check(ctx.Encode(m))
	case ".json":
		return check(ctx.CompileBytes(data))
	default:
		file, err := yaml.Extract("", data)
		if err != nil {
			return cue.Value{}, fmt.Errorf("failed to parse config: %w", err)
		}
		return check(ctx.BuildFile(file))
	}
}

func check(val cue.Value) (cue.Value, error) {
	if err := val.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("failed to build CUE value: %w", err)
	}
	return val, nil
}
