package storage

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/GriffinCanCode/storage/internal/shared/id"
)

// Item is a single keyed record
type Item struct {
	ID          id.ItemID
	Key         string
	Path        string
	Data        map[string]any
	Payload     []byte
	ContentType string
	Provider    string
	Pager       *Pager

	// store currently holding the item; nil until committed
	owner Store
}

// Pager links an item to its insertion-order neighbours. Index is the
// item's position when it was added.
type Pager struct {
	Index   int
	Current *Item
	Prev    *Item
	Next    *Item
}

// NewItem builds an item for key from value. Accepted values are nil, *Item,
// map[string]any, []byte and string. Map values recognise the fields key,
// path, content (or contents), contentType and data; other entries go to
// Data. A non-empty key overrides any key carried by value. An *Item that no
// store holds yet is reused; one already committed is cloned so an item is
// never live in two places.
func NewItem(key string, value any) (*Item, error) {
	var item *Item

	switch v := value.(type) {
	case nil:
		item = &Item{}
	case *Item:
		switch {
		case v == nil:
			item = &Item{}
		case v.Committed():
			item = v.Clone()
		default:
			item = v
		}
	case map[string]any:
		var err error
		if item, err = itemFromMap(v); err != nil {
			return nil, err
		}
	case []byte:
		item = &Item{Payload: v}
	case string:
		item = &Item{Payload: []byte(v)}
	default:
		return nil, fmt.Errorf("%w: unsupported item value %T", ErrInvalidInput, value)
	}

	if key != "" {
		item.Key = key
	}
	if item.Key == "" {
		item.Key = item.Path
	}
	if item.Path == "" {
		item.Path = item.Key
	}
	if item.Data == nil {
		item.Data = make(map[string]any)
	}
	if item.ID == "" {
		item.ID = id.NewItemID()
	}
	return item, nil
}

func itemFromMap(m map[string]any) (*Item, error) {
	item := &Item{Data: make(map[string]any)}

	for k, v := range m {
		switch k {
		case "key":
			item.Key = fmt.Sprint(v)
		case "path":
			item.Path = fmt.Sprint(v)
		case "contentType":
			item.ContentType = fmt.Sprint(v)
		case "content", "contents":
			switch c := v.(type) {
			case string:
				item.Payload = []byte(c)
			case []byte:
				item.Payload = c
			case nil:
			default:
				return nil, fmt.Errorf("%w: unsupported content %T", ErrInvalidInput, v)
			}
		case "data":
			data, ok := v.(map[string]any)
			if !ok && v != nil {
				return nil, fmt.Errorf("%w: data must be a map, got %T", ErrInvalidInput, v)
			}
			maps.Copy(item.Data, data)
		default:
			item.Data[k] = v
		}
	}
	return item, nil
}

// Get returns the value at a dotted property path. The names id, key, path,
// content, contentType, provider, data and pager.index address item fields;
// any other path (optionally prefixed with "data.") is resolved in Data.
func (i *Item) Get(path string) any {
	switch path {
	case "id":
		return i.ID.String()
	case "key":
		return i.Key
	case "path":
		return i.Path
	case "content", "contents", "payload":
		return string(i.Payload)
	case "contentType":
		return i.ContentType
	case "provider":
		return i.Provider
	case "data":
		return i.Data
	case "pager.index":
		if i.Pager == nil {
			return nil
		}
		return i.Pager.Index
	}
	return lookupPath(i.Data, strings.TrimPrefix(path, "data."))
}

// Set stores value at a dotted path in Data, creating intermediate maps
func (i *Item) Set(path string, value any) {
	if i.Data == nil {
		i.Data = make(map[string]any)
	}
	parts := strings.Split(strings.TrimPrefix(path, "data."), ".")
	m := i.Data
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// Clone returns a deep copy with a fresh ID and no pager links
func (i *Item) Clone() *Item {
	return &Item{
		ID:          id.NewItemID(),
		Key:         i.Key,
		Path:        i.Path,
		Data:        cloneMap(i.Data),
		Payload:     slices.Clone(i.Payload),
		ContentType: i.ContentType,
		Provider:    i.Provider,
	}
}

// Committed reports whether a list or collection currently holds the item
func (i *Item) Committed() bool { return i.owner != nil }

func (i *Item) commit(s Store) { i.owner = s }

// release detaches the item from s. A released item can be committed again
// without being copied.
func (i *Item) release(s Store) {
	if i.owner == s {
		i.owner = nil
		i.Pager = nil
	}
}

// String returns the item key
func (i *Item) String() string {
	if i.Path != "" && i.Path != i.Key {
		return fmt.Sprintf("%s (%s)", i.Key, i.Path)
	}
	return i.Key
}

// MatchKey returns the key used by fuzzy lookups
func (i *Item) MatchKey() string { return i.Key }

// MatchPath returns the path used by fuzzy lookups
func (i *Item) MatchPath() string { return i.Path }

func lookupPath(m map[string]any, path string) any {
	if m == nil || path == "" {
		return nil
	}
	if v, ok := m[path]; ok {
		return v
	}

	var cur any = m
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil
			}
			cur = v
		default:
			return nil
		}
	}
	return cur
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case map[string]any:
			out[k] = cloneMap(val)
		case []any:
			out[k] = slices.Clone(val)
		default:
			out[k] = v
		}
	}
	return out
}
