package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"lintrun/internal/config"
	"lintrun/internal/dispatch"
	"lintrun/internal/lint"
	"lintrun/internal/tui"
)

var (
	flagWorkers    int
	flagNoSuppress bool
	flagTagger     string
	flagProgress   bool
	flagExitCode   bool
	flagRecord     bool
)

var checkCmd = &cobra.Command{
	Use:   "check [path]",
	Short: "Check every candidate file of a tree and print surviving warnings",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	root, err := targetRoot(args)
	if err != nil {
		return err
	}
	settings, err := loadSettings(cmd, root)
	if err != nil {
		return err
	}
	if err := applyCheckFlags(cmd, &settings); err != nil {
		return err
	}

	files, err := lint.Discover(root, settings)
	if err != nil {
		return err
	}

	dbPath := flagDB
	if dbPath == "" && flagRecord {
		dbPath = filepath.Join(root, defaultDBPath)
	}
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	opts := lint.Options{
		Root:     root,
		Settings: settings,
		DBPath:   dbPath,
	}

	var progress *tui.Progress
	stdoutTTY := isTerminal(os.Stdout)
	if flagProgress && isTerminal(os.Stderr) {
		// With both streams on one terminal, warnings are printed through the
		// progress program so the two never overwrite each other.
		progress = tui.StartProgress(os.Stderr, "lintrun "+root, len(files), stdoutTTY)
		opts.OnProgress = progress.OnProgress
		opts.Sinks = append(opts.Sinks, progress)
	}
	if progress == nil || !stdoutTTY {
		opts.Sinks = append(opts.Sinks, dispatch.NewPrinter(cmd.OutOrStdout(), useColor(os.Stdout)))
	}

	linter, err := lint.New(opts)
	if err != nil {
		if progress != nil {
			progress.Finish(nil, err)
		}
		return err
	}
	defer linter.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	stats, err := linter.RunFiles(ctx, files)
	if progress != nil {
		progress.Finish(stats, err)
	}
	if err != nil {
		return err
	}
	if stats.CheckerFailures > 0 {
		slog.Warn("check.checker_failures", "count", stats.CheckerFailures)
	}
	if flagExitCode && stats.Warnings > 0 {
		exitStatus = 2
	}
	return nil
}

// applyCheckFlags overrides settings with the check-only flags that were set.
func applyCheckFlags(cmd *cobra.Command, s *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		s.Run.Workers = flagWorkers
	}
	if flags.Changed("no-suppress") {
		s.Suppress.Disabled = flagNoSuppress
	}
	if flags.Changed("tagger") {
		s.Tags.Source = flagTagger
	}
	return s.Validate()
}

func init() {
	checkCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel checker processes (default: CPUs + 2)")
	checkCmd.Flags().StringArrayVar(&flagIgnore, "ignore", nil, "paths, prefixes or globs to skip (repeatable, comma separated)")
	checkCmd.Flags().BoolVar(&flagNoSuppress, "no-suppress", false, "report every warning, ignoring both suppression tiers")
	checkCmd.Flags().BoolVar(&flagNoPathFilter, "no-path-filter", false, "keep warnings reported against files outside the tree")
	checkCmd.Flags().StringVar(&flagTagger, "tagger", "", "symbol source: ctags, treesitter or none")
	checkCmd.Flags().BoolVar(&flagProgress, "progress", false, "show live progress on stderr when it is a terminal")
	checkCmd.Flags().BoolVar(&flagExitCode, "exit-code", false, "exit with status 2 when warnings were reported")
	checkCmd.Flags().BoolVar(&flagRecord, "record", false, "record findings in <path>/.lintrun/findings.db when --db is not set")
	rootCmd.AddCommand(checkCmd)
}
