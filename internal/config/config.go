// Package config loads lintrun.toml and carries the resolved run settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file looked up from the target directory upwards.
const FileName = "lintrun.toml"

// Config is the full set of settings for one run. Values from lintrun.toml are
// loaded first, then CLI flags override them.
type Config struct {
	Checker  Checker  `toml:"checker"`
	Tags     Tags     `toml:"tags"`
	Suppress Suppress `toml:"suppress"`
	Run      Run      `toml:"run"`
	Build    Build    `toml:"build"`
}

// Checker describes the per-file external checker invocation.
type Checker struct {
	Command    string   `toml:"command"`
	Args       []string `toml:"args"`
	IgnoreFlag string   `toml:"ignore_flag"`
}

// Tags selects and configures the symbol source used for attribution.
type Tags struct {
	// Source is "ctags", "treesitter" or "none".
	Source  string   `toml:"source"`
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	// CacheDir enables the on-disk tag cache when non-empty.
	CacheDir string `toml:"cache_dir"`
}

// Suppress holds both suppression tiers.
type Suppress struct {
	// Global kinds are handed to the checker as its own ignore list.
	Global []string `toml:"global"`
	Rules  []Rule   `toml:"rule"`
	// Disabled turns off both tiers.
	Disabled bool `toml:"disabled"`
}

// Rule suppresses warnings of Kind whose enclosing symbol matches Symbol.
type Rule struct {
	Symbol string `toml:"symbol"`
	Kind   string `toml:"kind"`
	// When is an optional Risor expression that must also be truthy.
	When string `toml:"when"`
}

// Run holds dispatcher settings.
type Run struct {
	Workers    int      `toml:"workers"`
	Ignore     []string `toml:"ignore"`
	Extensions []string `toml:"extensions"`
	// NoPathFilter keeps warnings reported against files outside the candidate set.
	NoPathFilter bool `toml:"no_path_filter"`
}

// Build configures the full-tree compiler run.
type Build struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
}

// Default returns the built-in configuration: checkpatch in terse mode with
// types shown, ctags for symbols.
func Default() Config {
	return Config{
		Checker: Checker{
			Command:    "scripts/checkpatch.pl",
			Args:       []string{"--no-tree", "--terse", "--show-types", "--no-summary", "-f"},
			IgnoreFlag: "--ignore",
		},
		Tags: Tags{
			Source:  "ctags",
			Command: "ctags",
			Args:    []string{"-x", "--_xformat=%N %n"},
		},
		Suppress: Suppress{
			Global: []string{
				"FILE_PATH_CHANGES",
				"SPDX_LICENSE_TAG",
				"EMBEDDED_FILENAME",
				"NOT_UNIFIED_DIFF",
				"COMMIT_MESSAGE",
			},
		},
		Build: Build{
			Command: "make",
			Args:    []string{"-k", "W=1"},
		},
	}
}

// Find walks up from startDir looking for lintrun.toml. It returns the path and
// true when found.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of Default. Keys missing from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the explicit path when given, otherwise the nearest
// lintrun.toml above dir, otherwise the defaults.
func Resolve(explicit, dir string) (Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, ok, err := Find(dir)
	if err != nil {
		return Config{}, "", err
	}
	if !ok {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	return cfg, path, err
}

// Validate reports settings that cannot produce a working run.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Checker.Command) == "" {
		return errors.New("missing [checker].command")
	}
	switch c.Tags.Source {
	case "ctags", "treesitter", "none":
	default:
		return fmt.Errorf("[tags].source must be ctags, treesitter or none, got %q", c.Tags.Source)
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("[run].workers must not be negative, got %d", c.Run.Workers)
	}
	for i, r := range c.Suppress.Rules {
		if r.Kind == "" {
			return fmt.Errorf("[[suppress.rule]] #%d: missing kind", i+1)
		}
	}
	return nil
}
