package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"lintrun/internal/store"
	"lintrun/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing recorded findings",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	dbPath, err := openDBPath()
	if err != nil {
		return err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open findings: %w", err)
	}
	defer st.Close()

	return mcpserver.ServeStdio(newMCPServer(st))
}

func newMCPServer(st store.Store) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("lintrun", version.Version, mcpserver.WithToolCapabilities(false))
	s.AddTool(listWarningsTool(), makeListWarningsHandler(st))
	s.AddTool(warningSummaryTool(), makeSummaryHandler(st))
	s.AddTool(listRunsTool(), makeListRunsHandler(st))
	return s
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func listWarningsTool() mcp.Tool {
	return mcp.NewTool("list_warnings",
		mcp.WithDescription("List checker warnings recorded for a run, ordered by path and line. Each warning carries its kind and, when known, the enclosing function or symbol."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithNumber("run_id",
			mcp.Description("Run to query (default: latest run)"),
		),
		mcp.WithString("path",
			mcp.Description("Only warnings whose path starts with this prefix"),
		),
		mcp.WithString("kind",
			mcp.Description("Only warnings of this exact kind, e.g. LONG_LINE"),
		),
		mcp.WithString("symbol",
			mcp.Description("Only warnings whose enclosing symbol starts with this prefix"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum warnings to return (default 50)"),
		),
	)
}

func warningSummaryTool() mcp.Tool {
	return mcp.NewTool("warning_summary",
		mcp.WithDescription("Summarize a recorded run: totals plus warning counts per kind."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithNumber("run_id",
			mcp.Description("Run to summarize (default: latest run)"),
		),
	)
}

func listRunsTool() mcp.Tool {
	return mcp.NewTool("list_runs",
		mcp.WithDescription("List recorded runs, newest first."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithNumber("limit",
			mcp.Description("Maximum runs to return (default 20)"),
		),
	)
}

// --- Handler factories ---

func makeListWarningsHandler(st store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		run, err := selectRun(st, int64(req.GetInt("run_id", 0)))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := req.GetInt("limit", 50)
		if limit <= 0 {
			limit = 50
		}
		findings, err := st.ListFindings(run.ID, store.Query{
			Path:   req.GetString("path", ""),
			Kind:   req.GetString("kind", ""),
			Symbol: req.GetString("symbol", ""),
			Limit:  limit,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list warnings failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatWarnings(run, findings)), nil
	}
}

func makeSummaryHandler(st store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		run, err := selectRun(st, int64(req.GetInt("run_id", 0)))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		counts, err := st.KindCounts(run.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("count warnings failed: %v", err)), nil
		}
		return mcp.NewToolResultText(renderSummary(run, counts)), nil
	}
}

func makeListRunsHandler(st store.Store) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		runs, err := st.ListRuns(req.GetInt("limit", 20))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list runs failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatRuns(runs)), nil
	}
}

// --- Formatting helpers ---

func formatWarnings(run *store.Run, findings []store.Finding) string {
	if len(findings) == 0 {
		return fmt.Sprintf("No matching warnings in run #%d.", run.ID)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Warnings in run #%d (%d shown)\n\n", run.ID, len(findings))
	for _, f := range findings {
		sb.WriteString(formatFinding(f))
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatRuns(runs []store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded yet. Run 'lintrun check --record <path>' first."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "## Runs (%d)\n\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(&sb, "- **#%d** %s `%s` started %s: %d files, %d warnings, %d suppressed\n",
			r.ID, r.Status, r.Root, r.StartedAt.UTC().Format(time.RFC3339), r.Files, r.Warnings, r.Suppressed)
	}
	return sb.String()
}
