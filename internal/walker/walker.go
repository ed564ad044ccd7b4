// Package walker discovers the candidate files of a source tree.
package walker

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IgnoreFileName is read from the tree root when present; one pattern per line.
const IgnoreFileName = ".lintrunignore"

// maxFileSize is the largest file we'll consider (4 MB).
const maxFileSize = 4 << 20

// defaultIgnores are directories never worth checking.
var defaultIgnores = []string{
	".git",
	".svn",
	".hg",
	"node_modules",
	".lintrun",
}

// DefaultExtensions are the source extensions checked when none are configured.
var DefaultExtensions = []string{"c", "h"}

// DefaultNames are build files checked alongside sources.
var DefaultNames = []string{"Makefile", "Kconfig", "Kbuild"}

// Options selects which files Walk returns.
type Options struct {
	// Extensions without the dot; empty means DefaultExtensions.
	Extensions []string
	// Names are exact base names included regardless of extension; nil means
	// DefaultNames.
	Names []string
	// Ignore patterns are matched like lines of the ignore file.
	Ignore []string
}

// Walk returns the slash-separated paths of candidate files under root,
// relative to root and sorted.
func Walk(root string, opts Options) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowedExts := make(map[string]bool, len(exts))
	for _, e := range exts {
		allowedExts[strings.TrimPrefix(e, ".")] = true
	}
	names := opts.Names
	if names == nil {
		names = DefaultNames
	}
	allowedNames := make(map[string]bool, len(names))
	for _, n := range names {
		allowedNames[n] = true
	}

	ignores := append(loadIgnorePatterns(absRoot), opts.Ignore...)

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries, keep walking
		}
		if path == absRoot {
			return nil
		}
		rel, _ := filepath.Rel(absRoot, path)
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if matchesIgnore(d.Name(), rel, ignores) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if !allowedExts[ext] && !allowedNames[d.Name()] {
			return nil
		}
		if matchesIgnore(d.Name(), rel, ignores) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxFileSize {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// loadIgnorePatterns returns the defaults plus the patterns in the tree's
// ignore file.
func loadIgnorePatterns(root string) []string {
	patterns := append([]string(nil), defaultIgnores...)
	f, err := os.Open(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return patterns
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesIgnore checks a base name or relative path against the patterns:
// exact name, exact path, directory prefix, or glob on either.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		p = strings.TrimSuffix(filepath.ToSlash(p), "/")
		if p == "" {
			continue
		}
		if name == p || relPath == p {
			return true
		}
		if strings.HasPrefix(relPath, p+"/") {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}
