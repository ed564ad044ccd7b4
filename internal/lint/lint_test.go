package lint

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lintrun/internal/config"
	"lintrun/internal/dispatch"
	"lintrun/internal/store"
)

const fakeCheckpatch = `for a; do f=$a; done
case "$f" in
a.c)
	echo "a.c:3: WARNING:LONG_LINE: x"
	echo "a.c:12: WARNING:LONG_LINE: y"
	;;
Makefile)
	echo "Makefile:1: WARNING:TRAILING_WHITESPACE: trailing whitespace"
	;;
esac
`

const sourceA = `int foo(void)
{
	return 0;
}




int bar(void)
{
	return 1;
}
`

func setupTree(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.c"), []byte(sourceA), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "Makefile"), []byte("obj-y += a.o \n"), 0o644))
	return root
}

func testSettings() config.Config {
	cfg := config.Default()
	cfg.Checker = config.Checker{Command: "sh", Args: []string{"-c", fakeCheckpatch, "sh"}, IgnoreFlag: "--ignore"}
	cfg.Tags.Source = "treesitter"
	cfg.Run.Workers = 2
	return cfg
}

func TestLinter_EndToEnd(t *testing.T) {
	t.Parallel()
	root := setupTree(t)
	var out bytes.Buffer

	l, err := New(Options{
		Root:     root,
		Settings: testSettings(),
		Sinks:    []dispatch.Sink{dispatch.NewPrinter(&out, false)},
	})
	require.NoError(t, err)
	defer l.Close()

	stats, err := l.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, 3, stats.Warnings)
	assert.Contains(t, out.String(), "a.c:3: x\n")
	assert.Contains(t, out.String(), "a.c:12: y\n")
	assert.Contains(t, out.String(), "Makefile:1: trailing whitespace\n")
}

func TestLinter_SymbolRuleAndStore(t *testing.T) {
	t.Parallel()
	root := setupTree(t)
	settings := testSettings()
	settings.Suppress.Rules = []config.Rule{{Symbol: "bar", Kind: "LONG_LINE"}}
	dbPath := filepath.Join(t.TempDir(), "findings.db")

	l, err := New(Options{Root: root, Settings: settings, DBPath: dbPath})
	require.NoError(t, err)
	stats, err := l.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, l.Close())

	assert.Equal(t, 2, stats.Warnings)
	assert.Equal(t, 1, stats.Suppressed)

	s, err := store.Open(dbPath)
	require.NoError(t, err)
	defer s.Close()

	run, err := s.LatestRun()
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "ok", run.Status)
	assert.Equal(t, 2, run.Warnings)

	findings, err := s.ListFindings(run.ID, store.Query{})
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "Makefile", findings[0].Path)
	assert.Empty(t, findings[0].Symbol)
	assert.Equal(t, "a.c", findings[1].Path)
	assert.Equal(t, "foo", findings[1].Symbol)
}

func TestLinter_NoTagsLeavesWarningsUnattributed(t *testing.T) {
	t.Parallel()
	root := setupTree(t)
	settings := testSettings()
	settings.Tags.Source = "none"
	settings.Suppress.Rules = []config.Rule{{Symbol: "", Kind: "LONG_LINE"}}

	l, err := New(Options{Root: root, Settings: settings})
	require.NoError(t, err)
	defer l.Close()

	stats, err := l.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Warnings, "rules never match unattributed warnings")
	assert.Zero(t, stats.Suppressed)
}

func TestLinter_InvalidRule(t *testing.T) {
	t.Parallel()
	settings := testSettings()
	settings.Suppress.Rules = []config.Rule{{Symbol: "([", Kind: "X"}}

	_, err := New(Options{Root: t.TempDir(), Settings: settings})
	assert.Error(t, err)
}

func TestNewSymbolSource(t *testing.T) {
	t.Parallel()
	assert.Nil(t, NewSymbolSource(config.Tags{Source: "none"}, "/r"))
	assert.NotNil(t, NewSymbolSource(config.Tags{Source: "ctags", Command: "ctags"}, "/r"))
	assert.NotNil(t, NewSymbolSource(config.Tags{Source: "treesitter", CacheDir: ".lintrun/tags"}, "/r"))
}

func TestDiscover_HonorsIgnore(t *testing.T) {
	t.Parallel()
	root := setupTree(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "gen"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "gen", "tbl.c"), []byte("int x;\n"), 0o644))

	settings := testSettings()
	files, err := Discover(root, settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makefile", "a.c", "gen/tbl.c"}, files)

	settings.Run.Ignore = []string{"gen"}
	files, err = Discover(root, settings)
	require.NoError(t, err)
	assert.Equal(t, []string{"Makefile", "a.c"}, files)
}
