package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/storage/internal/logging"
	"github.com/GriffinCanCode/storage/internal/storage"
)

// DefaultPattern matches every file below the root
const DefaultPattern = "**/*"

// Loader reads files from disk into items
type Loader struct {
	pattern string
	hidden  bool
	logger  *logging.Logger
}

// Option configures a Loader
type Option func(*Loader)

// WithPattern restricts loading to paths (relative to the root) matching a
// doublestar glob
func WithPattern(pattern string) Option {
	return func(l *Loader) {
		if pattern != "" {
			l.pattern = pattern
		}
	}
}

// WithHidden includes dot files and dot directories
func WithHidden(include bool) Option {
	return func(l *Loader) { l.hidden = include }
}

// WithLogger sets the loader logger
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a loader
func New(opts ...Option) (*Loader, error) {
	l := &Loader{pattern: DefaultPattern, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	if !doublestar.ValidatePattern(l.pattern) {
		return nil, fmt.Errorf("%w: bad pattern %q", storage.ErrInvalidInput, l.pattern)
	}
	return l, nil
}

// Load walks root and returns one item per matching file, ordered by path.
// Item keys and paths are slash-separated and relative to root.
func (l *Loader) Load(ctx context.Context, root string) ([]*storage.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		paths []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == "." {
			return err
		}
		if !l.hidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		rel = filepath.ToSlash(rel)
		if ok, _ := doublestar.Match(l.pattern, rel); !ok {
			return nil
		}

		mu.Lock()
		paths = append(paths, rel)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Strings(paths)
	items := make([]*storage.Item, 0, len(paths))
	for _, rel := range paths {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		item, err := Parse(rel, data)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	l.logger.Debug("loaded items",
		zap.String("root", root),
		zap.String("pattern", l.pattern),
		zap.Int("count", len(items)))
	return items, nil
}

// Parse builds an item from a file's contents. Front matter becomes the
// item data and the remainder its payload.
func Parse(path string, data []byte) (*storage.Item, error) {
	format, matter, body := SplitFrontMatter(data)
	fields, err := ParseFrontMatter(format, matter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	item, err := storage.NewItem(path, map[string]any{
		"path":    path,
		"content": body,
		"data":    fields,
	})
	if err != nil {
		return nil, err
	}
	item.ContentType = mimetype.Detect(body).String()
	return item, nil
}
