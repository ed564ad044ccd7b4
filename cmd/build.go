package cmd

import (
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"lintrun/internal/checker"
	"lintrun/internal/lint"
)

var buildCmd = &cobra.Command{
	Use:   "build [path]",
	Short: "Run the full-tree build and print diagnostics for files of the tree",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := targetRoot(args)
		if err != nil {
			return err
		}
		settings, err := loadSettings(cmd, root)
		if err != nil {
			return err
		}

		var keep func(string) bool
		if !settings.Run.NoPathFilter {
			files, err := lint.Discover(root, settings)
			if err != nil {
				return err
			}
			keep = checker.PathPrefix(files)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		b := &checker.Build{Command: settings.Build.Command, Args: settings.Build.Args, Dir: root}
		n, err := b.Run(ctx, cmd.OutOrStdout(), keep)
		slog.Info("build.done", "lines", n, "err", err)
		return err
	},
}

func init() {
	buildCmd.Flags().StringArrayVar(&flagIgnore, "ignore", nil, "paths, prefixes or globs to exclude from the path filter")
	buildCmd.Flags().BoolVar(&flagNoPathFilter, "no-path-filter", false, "print every line of build output")
	rootCmd.AddCommand(buildCmd)
}
