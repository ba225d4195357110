package storage

import (
	"fmt"
	"sort"
)

// Store is the synchronous surface shared by List and Collection
type Store interface {
	Name() string
	SetItem(key string, value any) (*Item, error)
	AddItem(key string, value any) (*Item, error)
	AddItems(items any) error
	GetItem(key string) *Item
	Lookup(key string) (*Item, bool)
	HasItem(key string) bool
	DeleteItem(key string) bool
	ExtendItem(item *Item) *Item
	Items() []*Item
	Keys() []string
	Len() int
	Use(hook ItemHook)
	MarkLoaded()
	Options() *Options
	Emitter() *Emitter
}

// registryBound is implemented by stores a Registry can own
type registryBound interface {
	attach(r *Registry, name string)
	// extend reports whether r has not yet bound the store's events and
	// records that it now has
	extend(r *Registry) bool
	bindAccessors(pair *accessorPair)
}

// IsList reports whether v is a List or a handle fronting one
func IsList(v any) bool {
	_, ok := unwrap(v).(*List)
	return ok
}

// IsCollection reports whether v is a Collection or a handle fronting one
func IsCollection(v any) bool {
	_, ok := unwrap(v).(*Collection)
	return ok
}

// IsItem reports whether v is an Item
func IsItem(v any) bool {
	item, ok := v.(*Item)
	return ok && item != nil
}

func unwrap(v any) any {
	switch a := v.(type) {
	case *SingularAccessor:
		return a.Store
	case *PluralAccessor:
		return a.Store
	}
	return v
}

// itemsFrom converts a sequence of item-like values. Nothing is returned
// unless every entry converts. Items held by a store are cloned.
func itemsFrom(op string, list any) ([]*Item, error) {
	switch v := list.(type) {
	case []*Item:
		out := make([]*Item, len(v))
		for i, item := range v {
			switch {
			case item == nil:
				return nil, opError(op, ErrInvalidInput, "nil item at index %d", i)
			case item.Committed():
				out[i] = item.Clone()
			default:
				out[i] = item
			}
		}
		return out, nil
	case []map[string]any:
		out := make([]*Item, 0, len(v))
		for i, m := range v {
			item, err := NewItem("", m)
			if err != nil {
				return nil, opError(op, err, "index %d", i)
			}
			out = append(out, item)
		}
		return out, nil
	case []any:
		out := make([]*Item, 0, len(v))
		for i, entry := range v {
			switch e := entry.(type) {
			case *Item, map[string]any:
				item, err := NewItem("", e)
				if err != nil {
					return nil, opError(op, err, "index %d", i)
				}
				out = append(out, item)
			default:
				return nil, opError(op, ErrInvalidInput, "unsupported entry %T at index %d", entry, i)
			}
		}
		return out, nil
	case Store:
		src := v.Items()
		out := make([]*Item, len(src))
		for i, item := range src {
			out[i] = item.Clone()
		}
		return out, nil
	}
	return nil, opError(op, ErrInvalidInput, "expected a sequence of items, got %T", list)
}

// isSequence reports whether AddItems should route v through AddList
func isSequence(v any) bool {
	switch v.(type) {
	case []*Item, []map[string]any, []any, Store:
		return true
	}
	return false
}

// mapEntries flattens a keyed mapping into sorted keys and their values
func mapEntries(op string, items any) ([]string, map[string]any, error) {
	values := make(map[string]any)
	switch m := items.(type) {
	case map[string]any:
		for k, v := range m {
			values[k] = v
		}
	case map[string]*Item:
		for k, v := range m {
			values[k] = v
		}
	case map[string]map[string]any:
		for k, v := range m {
			values[k] = v
		}
	case map[string]string:
		for k, v := range m {
			values[k] = v
		}
	default:
		return nil, nil, opError(op, ErrInvalidInput, "expected a map or sequence of items, got %T", items)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, values, nil
}

// checkBatch fails when a batch could not be committed in full. Keys must be
// non-empty and, under DuplicatesReject, unique within the batch and absent
// from s.
func checkBatch(op string, s Store, keys []string) error {
	reject := s.Options().Duplicates == DuplicatesReject
	seen := make(map[string]struct{}, len(keys))
	for i, k := range keys {
		if k == "" {
			return opError(op, ErrInvalidInput, "item key is required at index %d", i)
		}
		if !reject {
			continue
		}
		if _, dup := seen[k]; dup {
			return opError(op, ErrDuplicateKey, "%q repeated in batch", k)
		}
		if _, exists := s.Lookup(k); exists {
			return opError(op, ErrDuplicateKey, "%q", k)
		}
		seen[k] = struct{}{}
	}
	return nil
}

// checkEntries verifies every map value converts to an item and that the
// keys pass checkBatch
func checkEntries(op string, s Store, keys []string, values map[string]any) error {
	for _, k := range keys {
		switch v := values[k].(type) {
		case nil, *Item, []byte, string:
		case map[string]any:
			if _, err := itemFromMap(v); err != nil {
				return opError(op, err, "%q", k)
			}
		default:
			return opError(op, ErrInvalidInput, "unsupported item value %T for %q", v, k)
		}
	}
	return checkBatch(op, s, keys)
}

func batchKeys(items []*Item) []string {
	keys := make([]string, len(items))
	for i, item := range items {
		keys[i] = keyOf(item)
	}
	return keys
}

func keyOf(item *Item) string {
	if item.Path != "" {
		return item.Path
	}
	return item.Key
}

func storeLabel(s Store) string {
	if s.Name() != "" {
		return s.Name()
	}
	return fmt.Sprintf("%T", s)
}
