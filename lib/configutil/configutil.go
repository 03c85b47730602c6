package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// LocalName returns the name of the local override file for a config file,
// `gummie.json5` becomes `gummie.local.json5`.
func LocalName(name string) string {
	prefixname, ext := splitExt(filepath.Base(name))
	if ext == "" {
		return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local", prefixname))
	}
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefixname, ext))
}

// ReadConfig reads a json5 configuration file on top of `defaults`.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
// It returns os.ErrNotExist (along with the defaults) when neither file exists.
func ReadConfig[T any](name string, defaults T) (T, error) {
	out := defaults
	allNotFound := true

	for _, path := range []string{name, LocalName(name)} {
		contents, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return out, err
		}
		if len(contents) == 0 {
			continue
		}

		var override T
		err = json5.Unmarshal(contents, &override)
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", path, err)
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Debug("merged config file", "path", path)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadRecursively is ReadConfig but it goes up the filesystem from `start`
// until the root to find a configuration file matching the name.
func ReadRecursively[T any](start, name string, defaults T) (T, error) {
	current, err := filepath.Abs(start)
	if err != nil {
		return defaults, err
	}

	for {
		config, err := ReadConfig(filepath.Join(current, name), defaults)
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaults, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaults, os.ErrNotExist
		}
		current = parent
	}
}
