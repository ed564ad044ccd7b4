// Package tags builds the per-file symbol tables used to attribute a warning
// to the symbol that encloses it.
package tags

import (
	"path/filepath"
	"sort"
	"strings"
)

// Tag marks the line on which a symbol definition starts.
type Tag struct {
	Line   int    `msgpack:"l"`
	Symbol string `msgpack:"s"`
}

// Table is one file's tags sorted ascending by Line.
type Table []Tag

// Index maps a file path to its Table. It is immutable once built and safe
// for concurrent reads. A path missing from the index is unindexed, which is
// different from an indexed file with no symbols.
type Index struct {
	tables map[string]Table
}

// NewIndex builds an Index from raw tag lists in any order.
func NewIndex(raw map[string][]Tag) *Index {
	idx := &Index{tables: make(map[string]Table, len(raw))}
	for path, tags := range raw {
		idx.tables[path] = sortTable(tags)
	}
	return idx
}

// sortTable copies tags and orders them by start line. The sort is stable so
// entries sharing a line keep their source order.
func sortTable(tags []Tag) Table {
	t := make(Table, len(tags))
	copy(t, tags)
	sort.SliceStable(t, func(i, j int) bool { return t[i].Line < t[j].Line })
	return t
}

// Attribute returns the symbol enclosing line in path: the last tag whose
// start line is at or before line. It reports false for unindexed files,
// build files, and lines above the first symbol.
func (i *Index) Attribute(path string, line int) (string, bool) {
	if i == nil || !Indexable(path) {
		return "", false
	}
	t, ok := i.tables[path]
	if !ok {
		return "", false
	}
	n := sort.Search(len(t), func(k int) bool { return t[k].Line > line })
	if n == 0 {
		return "", false
	}
	return t[n-1].Symbol, true
}

// Has reports whether path is present in the index.
func (i *Index) Has(path string) bool {
	if i == nil {
		return false
	}
	_, ok := i.tables[path]
	return ok
}

// Table returns a copy of the sorted table for path.
func (i *Index) Table(path string) (Table, bool) {
	if i == nil {
		return nil, false
	}
	t, ok := i.tables[path]
	if !ok {
		return nil, false
	}
	return append(Table(nil), t...), true
}

// Len is the number of indexed files.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.tables)
}

// Indexable reports whether the symbol tool can handle path. Build rule and
// Kconfig files are never indexed.
func Indexable(path string) bool {
	base := filepath.Base(path)
	for _, prefix := range []string{"Makefile", "Kconfig", "Kbuild"} {
		if strings.HasPrefix(base, prefix) {
			return false
		}
	}
	return !strings.HasSuffix(base, ".mk")
}
