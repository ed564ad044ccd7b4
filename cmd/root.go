package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lintrun/internal/version"
)

// defaultDBPath is relative to the working directory.
var defaultDBPath = filepath.Join(".lintrun", "findings.db")

var (
	flagConfig  string
	flagDB      string
	flagColor   string
	flagVerbose bool
	flagQuiet   bool
)

// exitStatus is set by commands that succeed but still want a non-zero exit.
var exitStatus int

var rootCmd = &cobra.Command{
	Use:           "lintrun",
	Short:         "Run a line-oriented checker over a source tree in parallel",
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose && flagQuiet {
			return errors.New("-v and -q are mutually exclusive")
		}
		level := slog.LevelWarn
		switch {
		case flagVerbose:
			level = slog.LevelDebug
		case flagQuiet:
			level = slog.LevelError
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		switch flagColor {
		case "auto":
		case "on":
			color.NoColor = false
		case "off":
			color.NoColor = true
		default:
			return fmt.Errorf("unsupported --color %q (must be auto, on or off)", flagColor)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if exitStatus != 0 {
		os.Exit(exitStatus)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to lintrun.toml (default: nearest one above the target)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "findings database (report and mcp default to .lintrun/findings.db)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug events to stderr")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "log errors only")
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor reports whether output to f should be colorized.
func useColor(f *os.File) bool {
	switch flagColor {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(f) && os.Getenv("NO_COLOR") == ""
}

// resolveDB returns the --db path, falling back to the default location.
func resolveDB() string {
	if flagDB != "" {
		return flagDB
	}
	return defaultDBPath
}

// openDBPath checks that a findings database exists before a read-only command uses it.
func openDBPath() (string, error) {
	dbPath := resolveDB()
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return "", fmt.Errorf("findings database not found at %s\nRun 'lintrun check --record' first", dbPath)
	}
	return dbPath, nil
}
