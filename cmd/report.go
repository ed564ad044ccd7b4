package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lintrun/internal/store"
)

var (
	flagReportRun   int64
	flagReportKind  string
	flagReportPath  string
	flagReportLimit int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize a recorded run",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := openDBPath()
		if err != nil {
			return err
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open findings: %w", err)
		}
		defer st.Close()

		run, err := selectRun(st, flagReportRun)
		if err != nil {
			return err
		}
		counts, err := st.KindCounts(run.ID)
		if err != nil {
			return err
		}
		findings, err := st.ListFindings(run.ID, store.Query{
			Path:  flagReportPath,
			Kind:  flagReportKind,
			Limit: flagReportLimit,
		})
		if err != nil {
			return err
		}

		md := renderReport(run, counts, findings)
		out := cmd.OutOrStdout()
		if !isTerminal(os.Stdout) {
			_, err := fmt.Fprint(out, md)
			return err
		}

		width := 100
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width-2),
		)
		if err != nil {
			return err
		}
		rendered, err := r.Render(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, rendered)
		return err
	},
}

// selectRun returns the run with the given ID, or the latest run when id is zero.
func selectRun(st store.Store, id int64) (*store.Run, error) {
	var (
		run *store.Run
		err error
	)
	if id > 0 {
		run, err = st.GetRun(id)
	} else {
		run, err = st.LatestRun()
	}
	if err != nil {
		return nil, err
	}
	if run == nil {
		if id > 0 {
			return nil, fmt.Errorf("run %d not found", id)
		}
		return nil, errors.New("no runs recorded yet")
	}
	return run, nil
}

// renderReport formats a run summary followed by its warnings as markdown.
func renderReport(run *store.Run, counts []store.KindCount, findings []store.Finding) string {
	var sb strings.Builder
	sb.WriteString(renderSummary(run, counts))
	if len(counts) == 0 {
		return sb.String()
	}
	fmt.Fprintf(&sb, "\n## Warnings (%d shown)\n\n", len(findings))
	for _, f := range findings {
		sb.WriteString(formatFinding(f))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderSummary(run *store.Run, counts []store.KindCount) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Run #%d (%s)\n\n", run.ID, run.Status)
	fmt.Fprintf(&sb, "**Root:** `%s`  \n", run.Root)
	fmt.Fprintf(&sb, "**Started:** %s  \n", run.StartedAt.Local().Format(time.DateTime))
	if run.FinishedAt != nil {
		fmt.Fprintf(&sb, "**Took:** %s  \n", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(&sb, "**Files:** %d  \n**Warnings:** %d  \n**Suppressed:** %d\n\n",
		run.Files, run.Warnings, run.Suppressed)

	if len(counts) == 0 {
		sb.WriteString("No warnings recorded.\n")
		return sb.String()
	}

	sb.WriteString("## By kind\n\n| Kind | Count |\n|---|---:|\n")
	for _, kc := range counts {
		fmt.Fprintf(&sb, "| %s | %d |\n", kc.Kind, kc.Count)
	}
	return sb.String()
}

func formatFinding(f store.Finding) string {
	loc := fmt.Sprintf("`%s:%d`", f.Path, f.Line)
	if f.Symbol != "" {
		return fmt.Sprintf("- %s **%s** in `%s`: %s", loc, f.Kind, f.Symbol, f.Message)
	}
	return fmt.Sprintf("- %s **%s**: %s", loc, f.Kind, f.Message)
}

func init() {
	reportCmd.Flags().Int64Var(&flagReportRun, "run", 0, "run ID (default: latest)")
	reportCmd.Flags().StringVar(&flagReportKind, "kind", "", "only list warnings of this kind")
	reportCmd.Flags().StringVar(&flagReportPath, "path", "", "only list warnings under this path prefix")
	reportCmd.Flags().IntVar(&flagReportLimit, "limit", 100, "maximum warnings to list (0 for all)")
	rootCmd.AddCommand(reportCmd)
}
