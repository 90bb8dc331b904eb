package config

import (
	"fmt"
	"io"
	"strings"

	"cuelang.org/go/cue"
	"github.com/alecthomas/kong"
)

// KongLoader is a kong.ConfigurationLoader backed by LoadValueFromReader.
//
// Flags are looked up by their name with dashes turned into underscores,
// first under the command they belong to and then at the top level:
//
//	max_value_size: 4096      # any command
//	decode:
//	  template: "{{tag}}\n"   # decode --template only
func KongLoader(r io.Reader) (kong.Resolver, error) {
	val, err := LoadValueFromReader(r)
	if err != nil {
		return nil, err
	}
	return Resolver(val), nil
}

// Resolver returns a kong.Resolver that reads flag values from val.
func Resolver(val cue.Value) kong.Resolver {
	return kong.ResolverFunc(func(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
		name := strings.ReplaceAll(flag.Name, "-", "_")

		var paths []string
		if parent != nil && parent.Command != nil {
			paths = append(paths, commandPath(parent.Command)+"."+name)
		}
		paths = append(paths, name)

		for _, p := range paths {
			v := val.LookupPath(cue.ParsePath(p))
			if !v.Exists() {
				continue
			}
			return scalar(v, flag.Name)
		}
		return nil, nil
	})
}

// commandPath returns the dotted command path, e.g. "decode".
func commandPath(cmd *kong.Command) string {
	var parts []string
	for n := cmd; n != nil && n.Type == kong.CommandNode; n = n.Parent {
		parts = append([]string{strings.ReplaceAll(n.Name, "-", "_")}, parts...)
	}
	return strings.Join(parts, ".")
}

func scalar(v cue.Value, flag string) (any, error) {
	switch v.IncompleteKind() {
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		return v.Int64()
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.ListKind:
		var items []string
		if err := v.Decode(&items); err != nil {
			return nil, fmt.Errorf("config value for --%s: %w", flag, err)
		}
		return strings.Join(items, ","), nil
	default:
		return nil, fmt.Errorf("config value for --%s must be a scalar or list, got %s", flag, v.IncompleteKind())
	}
}
