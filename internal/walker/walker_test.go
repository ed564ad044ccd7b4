package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x\n"), 0o644))
	}
	return root
}

func TestWalk_DefaultSelection(t *testing.T) {
	t.Parallel()
	root := makeTree(t,
		"drivers/net/a.c",
		"drivers/net/a.h",
		"drivers/net/Makefile",
		"drivers/net/Kconfig",
		"drivers/net/README",
		".git/config.c",
		"Documentation/x.rst",
	)

	files, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"drivers/net/Kconfig",
		"drivers/net/Makefile",
		"drivers/net/a.c",
		"drivers/net/a.h",
	}, files)
}

func TestWalk_IgnoreOptions(t *testing.T) {
	t.Parallel()
	root := makeTree(t,
		"drivers/staging/s.c",
		"drivers/net/a.c",
		"drivers/net/gen.c",
		"lib/b.c",
		"lib/b_test.c",
	)

	files, err := Walk(root, Options{Ignore: []string{"drivers/staging/", "drivers/net/gen.c", "*_test.c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"drivers/net/a.c", "lib/b.c"}, files)
}

func TestWalk_IgnoreFile(t *testing.T) {
	t.Parallel()
	root := makeTree(t, "tools/t.c", "kernel/k.c")
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte("# generated\n\ntools\n"), 0o644))

	files, err := Walk(root, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"kernel/k.c"}, files)
}

func TestWalk_CustomExtensions(t *testing.T) {
	t.Parallel()
	root := makeTree(t, "a.go", "b.c", "Makefile")

	files, err := Walk(root, Options{Extensions: []string{".go"}, Names: []string{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.go"}, files)
}

func TestMatchesIgnore(t *testing.T) {
	t.Parallel()
	assert.True(t, matchesIgnore("staging", "drivers/staging", []string{"drivers/staging"}))
	assert.False(t, matchesIgnore("stagingx", "drivers/stagingx", []string{"drivers/staging"}))
	assert.True(t, matchesIgnore("x.c", "a/x.c", []string{"*.c"}))
	assert.False(t, matchesIgnore("x.c", "a/x.c", []string{""}))
}
