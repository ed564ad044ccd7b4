package languages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lintrun/internal/tags"
)

func newSource(t *testing.T, files map[string]string) *tags.TreeSitter {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	reg := tags.NewRegistry()
	RegisterAll(reg)
	return &tags.TreeSitter{Registry: reg, Dir: dir}
}

func symbolsAt(tt []tags.Tag) map[string]int {
	out := make(map[string]int, len(tt))
	for _, tag := range tt {
		out[tag.Symbol] = tag.Line
	}
	return out
}

func TestTreeSitter_C(t *testing.T) {
	t.Parallel()
	src := newSource(t, map[string]string{"drivers/x.c": `#define MAX_LEN 16

struct dev {
	int id;
};

static int probe(struct dev *d)
{
	return d->id;
}

static char *name_of(struct dev *d)
{
	return 0;
}
`})

	got, err := src.Symbols(context.Background(), "drivers/x.c")
	require.NoError(t, err)

	syms := symbolsAt(got)
	assert.Equal(t, 1, syms["MAX_LEN"])
	assert.Equal(t, 3, syms["dev"])
	assert.Equal(t, 7, syms["probe"])
	assert.Equal(t, 12, syms["name_of"])
}

func TestTreeSitter_Go(t *testing.T) {
	t.Parallel()
	src := newSource(t, map[string]string{"main.go": "package main\n\ntype T struct{}\n\nfunc (T) M() {}\n\nfunc main() {}\n"})

	got, err := src.Symbols(context.Background(), "main.go")
	require.NoError(t, err)

	syms := symbolsAt(got)
	assert.Equal(t, 3, syms["T"])
	assert.Equal(t, 5, syms["M"])
	assert.Equal(t, 7, syms["main"])
}

func TestTreeSitter_Unsupported(t *testing.T) {
	t.Parallel()
	src := newSource(t, map[string]string{"notes.txt": "hello\n"})

	_, err := src.Symbols(context.Background(), "notes.txt")
	require.Error(t, err)
	assert.True(t, errors.Is(err, tags.ErrUnsupported))
}

func TestTreeSitter_FeedsIndex(t *testing.T) {
	t.Parallel()
	src := newSource(t, map[string]string{
		"a.c":      "int foo(void)\n{\n\treturn 0;\n}\n\nint bar(void)\n{\n\treturn 1;\n}\n",
		"Makefile": "obj-y += a.o\n",
	})

	idx, err := tags.Build(context.Background(), src, []string{"a.c", "Makefile"})
	require.NoError(t, err)

	sym, ok := idx.Attribute("a.c", 3)
	require.True(t, ok)
	assert.Equal(t, "foo", sym)

	sym, ok = idx.Attribute("a.c", 8)
	require.True(t, ok)
	assert.Equal(t, "bar", sym)

	assert.False(t, idx.Has("Makefile"))
}
