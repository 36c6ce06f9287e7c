package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

func splitExt(f string) (string, string) {
	idx := strings.LastIndexByte(f, '.')
	if idx < 0 {
		return f, ""
	}
	return f[:idx], f[idx+1:]
}

// LocalPath returns the path of the local override file for a config,
// "config.json5" becomes "config.local.json5".
func LocalPath(name string) string {
	prefix, ext := splitExt(filepath.Base(name))
	if ext == "" {
		return filepath.Join(filepath.Dir(name), prefix+".local")
	}
	return filepath.Join(filepath.Dir(name), fmt.Sprintf("%s.local.%s", prefix, ext))
}

func readInto[T any](path string, out *T) (bool, error) {
	contents, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if len(contents) == 0 {
		return false, nil
	}
	err = json5.Unmarshal(contents, out)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}
	return true, nil
}

// reads a configuration file, `name` should come with a file extension.
// this function will merge the following files, where higher number is more prioritized.
// 1. <name>.<ext>
// 2. <name>.local.<ext>
func ReadConfig[T any](name string) (T, error) {
	var out T

	found, err := readInto(name, &out)
	if err != nil {
		return out, err
	}

	localPath := LocalPath(name)
	var override T
	foundLocal, err := readInto(localPath, &override)
	if err != nil {
		return out, err
	}
	if foundLocal {
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
	}

	if !found && !foundLocal {
		return out, os.ErrNotExist
	}
	return out, nil
}

// ReadConfigOver is ReadConfig, except that the files are decoded on top of
// `base`, so only the fields they set replace it. Fields set to an empty
// value (`[]`, `""`) stay empty.
func ReadConfigOver[T any](base T, name string) (T, error) {
	out := base

	found, err := readInto(name, &out)
	if err != nil {
		return base, err
	}
	localPath := LocalPath(name)
	foundLocal, err := readInto(localPath, &out)
	if err != nil {
		return base, err
	}
	if foundLocal {
		slog.Info("merging config with local overrides", "local", localPath)
	}

	if !found && !foundLocal {
		return base, os.ErrNotExist
	}
	return out, nil
}

// ReadConfig but it recursively goes up the filesystem until the root
// to find a configuration file matching the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if err == nil {
			return config, nil
		}
		if !os.IsNotExist(err) {
			return defaultOut, err
		}

		parent := filepath.Dir(current)
		if parent == current {
			return defaultOut, os.ErrNotExist
		}
		current = parent
	}
}
