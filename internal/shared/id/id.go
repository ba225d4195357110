// Package id provides ID generation for storage records.
//
// IDs are ULIDs, so they sort by creation time, with a short type prefix
// that makes log lines readable:
//   - item_*: a committed Item
//   - list_*: a List instance (derived lists get their own)
//   - coll_*: a keyed Collection instance
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ItemID identifies an item
type ItemID string

// ListID identifies a list
type ListID string

// CollectionID identifies a keyed collection
type CollectionID string

const (
	ItemPrefix       = "item"
	ListPrefix       = "list"
	CollectionPrefix = "coll"
)

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source.
// Tests use it for deterministic output.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// NewItemID generates a new item ID
func NewItemID() ItemID {
	return ItemID(Default().GenerateWithPrefix(ItemPrefix))
}

// NewListID generates a new list ID
func NewListID() ListID {
	return ListID(Default().GenerateWithPrefix(ListPrefix))
}

// NewCollectionID generates a new collection ID
func NewCollectionID() CollectionID {
	return CollectionID(Default().GenerateWithPrefix(CollectionPrefix))
}

func (id ItemID) String() string       { return string(id) }
func (id ListID) String() string       { return string(id) }
func (id CollectionID) String() string { return string(id) }

// IsValid reports whether a prefixed or bare ID carries a valid ULID
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse extracts the ULID from a prefixed or bare ID
func Parse(s string) (ulid.ULID, error) {
	if i := strings.LastIndexByte(s, '_'); i >= 0 {
		s = s[i+1:]
	}
	return ulid.Parse(s)
}

// Timestamp returns the creation time encoded in an ID
func Timestamp(s string) (time.Time, error) {
	parsed, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
