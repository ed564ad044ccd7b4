package tags

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
)

// TreeSitter extracts definitions in-process with tree-sitter grammars from a
// Registry. Files without a registered grammar yield ErrUnsupported.
type TreeSitter struct {
	Registry *Registry
	// Dir is prepended to relative paths when reading sources.
	Dir string
}

// Symbols implements SymbolSource.
func (ts *TreeSitter) Symbols(ctx context.Context, path string) ([]Tag, error) {
	spec := ts.Registry.Lookup(path)
	if spec == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	full := path
	if ts.Dir != "" && !filepath.IsAbs(path) {
		full = filepath.Join(ts.Dir, path)
	}
	src, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return extract(ctx, spec, src)
}

// extract runs spec.Query over src and returns one tag per @def capture.
func extract(ctx context.Context, spec *LanguageSpec, src []byte) ([]Tag, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.Language)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", spec.Name, err)
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.Query), spec.Language)
	if err != nil {
		return nil, fmt.Errorf("compile query for %s: %w", spec.Name, err)
	}
	defer q.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	type seenKey struct {
		line int
		name string
	}
	seen := make(map[seenKey]bool)
	var tags []Tag
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		var def *sitter.Node
		var name string
		for _, c := range m.Captures {
			switch q.CaptureNameForId(c.Index) {
			case "def":
				def = c.Node
			case "name":
				name = c.Node.Content(src)
			}
		}
		if def == nil || name == "" {
			continue
		}
		row, err := safecast.Conv[int](def.StartPoint().Row)
		if err != nil {
			return nil, fmt.Errorf("row of %s: %w", name, err)
		}
		k := seenKey{line: row + 1, name: name}
		if seen[k] {
			continue
		}
		seen[k] = true
		tags = append(tags, Tag{Line: k.line, Symbol: name})
	}
	return tags, nil
}
