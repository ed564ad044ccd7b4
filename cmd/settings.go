package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lintrun/internal/config"
)

var (
	flagIgnore       []string
	flagNoPathFilter bool
)

// targetRoot returns the absolute tree root named by args, or the working directory.
func targetRoot(args []string) (string, error) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", root, err)
	}
	return abs, nil
}

// loadSettings resolves lintrun.toml for root and applies the flags shared by
// check and build. Flags only override the file when set explicitly.
func loadSettings(cmd *cobra.Command, root string) (config.Config, error) {
	settings, path, err := config.Resolve(flagConfig, root)
	if err != nil {
		return config.Config{}, err
	}
	if path != "" {
		slog.Debug("config.loaded", "path", path)
	}

	flags := cmd.Flags()
	if flags.Changed("ignore") {
		settings.Run.Ignore = append(settings.Run.Ignore, splitList(flagIgnore)...)
	}
	if flags.Changed("no-path-filter") {
		settings.Run.NoPathFilter = flagNoPathFilter
	}
	return settings, nil
}

// splitList flattens repeated and comma-separated flag values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
