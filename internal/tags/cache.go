package tags

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// cacheSchemaVersion is bumped whenever cacheEntry changes shape.
const cacheSchemaVersion uint16 = 1

type cacheEntry struct {
	Schema uint16
	Tags   []Tag
}

// Cached wraps a SymbolSource with an on-disk cache keyed by the file's
// content, so unchanged files skip the symbol tool on later runs. Cache
// failures fall through to the wrapped source.
type Cached struct {
	Source SymbolSource
	// Name separates entries of different sources sharing one directory.
	Name string
	Dir  string
	// Root is prepended to relative paths when hashing file content.
	Root string
}

// Symbols implements SymbolSource.
func (c *Cached) Symbols(ctx context.Context, path string) ([]Tag, error) {
	full := path
	if c.Root != "" && !filepath.IsAbs(path) {
		full = filepath.Join(c.Root, path)
	}
	content, err := os.ReadFile(full)
	if err != nil {
		return c.Source.Symbols(ctx, path)
	}
	key := c.key(path, content)

	if tags, ok := c.get(key); ok {
		return tags, nil
	}
	tags, err := c.Source.Symbols(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := c.put(key, tags); err != nil {
		slog.Debug("tags.cache.put", "path", path, "err", err)
	}
	return tags, nil
}

func (c *Cached) key(path string, content []byte) string {
	h := sha256.New()
	h.Write([]byte(c.Name))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cached) pathFor(key string) string {
	return filepath.Join(c.Dir, key[:2], key+".mp")
}

func (c *Cached) get(key string) ([]Tag, bool) {
	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Debug("tags.cache.get", "key", key, "err", err)
		}
		return nil, false
	}
	defer f.Close()

	var e cacheEntry
	if err := msgpack.NewDecoder(f).Decode(&e); err != nil || e.Schema != cacheSchemaVersion {
		return nil, false
	}
	return e.Tags, true
}

// put writes through a temp file and renames it into place, so concurrent
// readers never observe a partial entry.
func (c *Cached) put(key string, tags []Tag) error {
	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(cacheEntry{Schema: cacheSchemaVersion, Tags: tags}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}
