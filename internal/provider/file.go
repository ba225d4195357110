package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/natefinch/atomic"

	"github.com/GriffinCanCode/storage/internal/shared/id"
	"github.com/GriffinCanCode/storage/internal/storage"
)

const (
	plainExt      = ".json"
	compressedExt = ".json.gz"
)

// record is the on-disk form of an item
type record struct {
	ID          string         `json:"id"`
	Key         string         `json:"key"`
	Path        string         `json:"path,omitempty"`
	Data        map[string]any `json:"data,omitempty"`
	Payload     []byte         `json:"payload,omitempty"`
	ContentType string         `json:"contentType,omitempty"`
	Provider    string         `json:"provider,omitempty"`
}

// File stores one JSON document per key under a root directory. Writes are
// atomic; documents are optionally gzip compressed.
type File struct {
	root     string
	compress bool
	mu       sync.RWMutex
}

// FileOption configures a File provider
type FileOption func(*File)

// WithCompression gzips documents written by Set
func WithCompression(enabled bool) FileOption {
	return func(f *File) { f.compress = enabled }
}

// NewFile creates a file provider rooted at root, creating the directory
func NewFile(root string, opts ...FileOption) (*File, error) {
	if root == "" {
		return nil, fmt.Errorf("%w: root directory is required", storage.ErrInvalidInput)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create root: %w", err)
	}

	f := &File{root: abs}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Root returns the absolute root directory
func (f *File) Root() string { return f.root }

// Get reads the document stored under key
func (f *File) Get(ctx context.Context, key string) (*storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base, err := f.resolve(key)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.read(base)
}

func (f *File) read(base string) (*storage.Item, error) {
	for _, ext := range f.extensions() {
		data, err := os.ReadFile(base + ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", base+ext, err)
		}
		if ext == compressedExt {
			if data, err = gunzip(data); err != nil {
				return nil, fmt.Errorf("decompress %s: %w", base+ext, err)
			}
		}

		var rec record
		if err := sonic.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode %s: %w", base+ext, err)
		}
		return rec.item(), nil
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, base)
}

// Set writes item under key, replacing any previous document
func (f *File) Set(ctx context.Context, key string, item *storage.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("%w: item is required", storage.ErrInvalidInput)
	}
	base, err := f.resolve(key)
	if err != nil {
		return err
	}

	rec := newRecord(key, item)
	data, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}

	ext := plainExt
	if f.compress {
		ext = compressedExt
		if data, err = gzipBytes(data); err != nil {
			return fmt.Errorf("compress %q: %w", key, err)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	if err := atomic.WriteFile(base+ext, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	// drop a stale document in the other encoding
	for _, other := range f.extensions() {
		if other != ext {
			_ = os.Remove(base + other)
		}
	}
	return nil
}

// Find returns the documents whose keys match the glob pattern, in key order
func (f *File) Find(ctx context.Context, pattern string) ([]*storage.Item, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", storage.ErrInvalidInput, pattern)
	}

	keys, err := f.Keys(ctx)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*storage.Item
	for _, key := range keys {
		if ok, _ := doublestar.Match(pattern, key); !ok {
			continue
		}
		item, err := f.read(filepath.Join(f.root, filepath.FromSlash(key)))
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

// Delete removes the document stored under key
func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	base, err := f.resolve(key)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	removed := false
	for _, ext := range f.extensions() {
		err := os.Remove(base + ext)
		switch {
		case err == nil:
			removed = true
		case !errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("delete %q: %w", key, err)
		}
	}
	if !removed {
		return fmt.Errorf("%w: key %q", storage.ErrNotFound, key)
	}
	return nil
}

// Keys lists every stored key in sorted order
func (f *File) Keys(ctx context.Context) ([]string, error) {
	var (
		mu   sync.Mutex
		keys []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, f.root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(f.root, p)
		if err != nil {
			return nil
		}
		key, ok := keyFromFile(filepath.ToSlash(rel))
		if !ok {
			return nil
		}

		mu.Lock()
		keys = append(keys, key)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", f.root, err)
	}

	sort.Strings(keys)
	return dedupe(keys), nil
}

// resolve maps key to a document path without extension, rejecting keys
// that would escape the root
func (f *File) resolve(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("%w: key is required", storage.ErrInvalidInput)
	}
	clean := path.Clean("/" + filepath.ToSlash(key))
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: invalid key %q", storage.ErrInvalidInput, key)
	}
	return filepath.Join(f.root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

func (f *File) extensions() []string {
	if f.compress {
		return []string{compressedExt, plainExt}
	}
	return []string{plainExt, compressedExt}
}

func keyFromFile(rel string) (string, bool) {
	switch {
	case strings.HasSuffix(rel, compressedExt):
		return strings.TrimSuffix(rel, compressedExt), true
	case strings.HasSuffix(rel, plainExt):
		return strings.TrimSuffix(rel, plainExt), true
	}
	return "", false
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func newRecord(key string, item *storage.Item) record {
	return record{
		ID:          item.ID.String(),
		Key:         key,
		Path:        item.Path,
		Data:        item.Data,
		Payload:     item.Payload,
		ContentType: item.ContentType,
		Provider:    item.Provider,
	}
}

func (r record) item() *storage.Item {
	data := r.Data
	if data == nil {
		data = make(map[string]any)
	}
	return &storage.Item{
		ID:          id.ItemID(r.ID),
		Key:         r.Key,
		Path:        r.Path,
		Data:        data,
		Payload:     r.Payload,
		ContentType: r.ContentType,
		Provider:    r.Provider,
	}
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzip(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
