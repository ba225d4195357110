package storage

import (
	"context"
	"errors"
	"slices"

	"github.com/GriffinCanCode/storage/internal/match"
	"github.com/GriffinCanCode/storage/internal/shared/id"
)

// Provider is an external backing store for a Collection. Implementations
// must be safe for concurrent use.
type Provider interface {
	Get(ctx context.Context, key string) (*Item, error)
	Set(ctx context.Context, key string, item *Item) error
	Find(ctx context.Context, pattern string) ([]*Item, error)
	Delete(ctx context.Context, key string) error
}

// Collection is a keyed map of items with no secondary index. keys keeps
// insertion order for deterministic iteration.
type Collection struct {
	id        id.CollectionID
	name      string
	items     map[string]*Item
	keys      []string
	options   *Options
	emitter   *Emitter
	hooks     []ItemHook
	provider  Provider
	registry  *Registry
	bound     *Registry
	accessors *accessorPair
	loaded    bool
}

// NewCollection creates an empty collection. A nil opts uses DefaultOptions.
func NewCollection(opts *Options) *Collection {
	o := opts.withDefaults(nil)
	o.Kind = KindCollection
	return &Collection{
		id:      id.NewCollectionID(),
		items:   make(map[string]*Item),
		options: o,
		emitter: NewEmitter(),
	}
}

// ID returns the collection identifier
func (c *Collection) ID() id.CollectionID { return c.id }

// Name returns the plural name the collection is registered under, if any
func (c *Collection) Name() string {
	if c.name != "" {
		return c.name
	}
	return c.options.Plural
}

// SetProvider binds p, overriding any provider named in the options
func (c *Collection) SetProvider(p Provider) { c.provider = p }

// SetItem stores an item under its key. An existing key is replaced in
// place unless the options reject duplicates.
func (c *Collection) SetItem(key string, value any) (*Item, error) {
	item, err := NewItem(key, value)
	if err != nil {
		return nil, opError("Collection#setItem", err, "")
	}
	if item.Key == "" {
		return nil, opError("Collection#setItem", ErrInvalidInput, "item key is required")
	}

	if prev, exists := c.items[item.Key]; exists {
		if c.options.Duplicates == DuplicatesReject {
			return nil, opError("Collection#setItem", ErrDuplicateKey, "%q", item.Key)
		}
		prev.release(c)
	} else {
		c.keys = append(c.keys, item.Key)
	}
	c.items[item.Key] = item
	item.commit(c)

	runItemHooks(c.hooks, item, c, c.registry)
	c.emit(Event{Type: EventLoad, Item: item})
	c.emit(Event{Type: EventType(item.Key), Item: item})
	if c.bound != nil {
		c.bound.bubbleItem(c, item)
	}
	return item, nil
}

// AddItem emits addItem, stores the item and runs the decoration pipeline
func (c *Collection) AddItem(key string, value any) (*Item, error) {
	c.emit(Event{Type: EventAddItem, Key: key, Args: []any{key, value}})

	item, err := c.SetItem(key, value)
	if err != nil {
		return nil, err
	}
	return c.ExtendItem(item), nil
}

// AddItems adds a map of items in sorted key order, or a sequence of items
// keyed by path
func (c *Collection) AddItems(items any) error {
	if isSequence(items) {
		return c.addList(items)
	}

	keys, values, err := mapEntries("Collection#addItems", items)
	if err != nil {
		return err
	}

	c.emit(Event{Type: EventAddItems, Args: []any{items}})
	if c.loaded {
		c.loaded = false
		return nil
	}
	if err := checkEntries("Collection#addItems", c, keys, values); err != nil {
		return err
	}

	for _, key := range keys {
		if _, err := c.AddItem(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) addList(list any) error {
	c.emit(Event{Type: EventAddList, Args: []any{list}})
	if c.loaded {
		c.loaded = false
		return nil
	}

	items, err := itemsFrom("Collection#addItems", list)
	if err != nil {
		return err
	}
	if err := checkBatch("Collection#addItems", c, batchKeys(items)); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := c.AddItem(keyOf(item), item); err != nil {
			return err
		}
	}
	return nil
}

// MarkLoaded tells the next AddItems call that a listener has already
// loaded the items
func (c *Collection) MarkLoaded() { c.loaded = true }

// GetItem returns the item stored under key, falling back to fuzzy file
// matching with the most recently added match winning
func (c *Collection) GetItem(key string) *Item {
	if key == "" {
		return nil
	}
	if item, ok := c.items[key]; ok {
		return item
	}
	for i := len(c.keys) - 1; i >= 0; i-- {
		if item := c.items[c.keys[i]]; match.File(key, item) {
			return item
		}
	}
	return nil
}

// Lookup returns the item stored under exactly key
func (c *Collection) Lookup(key string) (*Item, bool) {
	item, ok := c.items[key]
	return item, ok
}

// HasItem reports whether key resolves to an item
func (c *Collection) HasItem(key string) bool { return c.GetItem(key) != nil }

// DeleteItem removes the item key resolves to
func (c *Collection) DeleteItem(key string) bool {
	item := c.GetItem(key)
	if item == nil {
		return false
	}
	c.remove(item.Key)
	return true
}

func (c *Collection) remove(key string) {
	item, ok := c.items[key]
	if !ok {
		return
	}
	item.release(c)
	delete(c.items, key)
	if i := slices.Index(c.keys, key); i >= 0 {
		c.keys = slices.Delete(c.keys, i, i+1)
	}
	if r := c.registry; r != nil {
		r.recordDeleted(c.Name())
	}
}

// ExtendItem runs the owning registry's item pipeline on item
func (c *Collection) ExtendItem(item *Item) *Item {
	if c.registry != nil {
		c.registry.ExtendItem(item, c)
	}
	return item
}

// Use registers a hook run on every item stored in this collection
func (c *Collection) Use(hook ItemHook) {
	c.hooks = append(c.hooks, hook)
}

// Items returns the items in insertion order
func (c *Collection) Items() []*Item {
	out := make([]*Item, len(c.keys))
	for i, k := range c.keys {
		out[i] = c.items[k]
	}
	return out
}

// Keys returns the keys in insertion order
func (c *Collection) Keys() []string { return slices.Clone(c.keys) }

// Len returns the number of items
func (c *Collection) Len() int { return len(c.items) }

// Accessors returns the singular and plural handles the collection is
// registered under. Both are nil until Registry.Create registers it.
func (c *Collection) Accessors() (*SingularAccessor, *PluralAccessor) {
	if c.accessors == nil {
		return nil, nil
	}
	return c.accessors.singular, c.accessors.plural
}

// Options returns the collection options
func (c *Collection) Options() *Options { return c.options }

// Emitter returns the collection's event emitter
func (c *Collection) Emitter() *Emitter { return c.emitter }

// On subscribes h to collection events of type t
func (c *Collection) On(t EventType, h Handler) { c.emitter.On(t, h) }

// Get resolves key through the provider. Without a provider the in-memory
// map answers and a miss is ErrNotFound.
func (c *Collection) Get(ctx context.Context, key string) (*Item, error) {
	p, err := c.resolveProvider("Collection#get")
	if err != nil {
		return nil, err
	}
	if p == nil {
		if item, ok := c.items[key]; ok {
			return item, nil
		}
		return nil, opError("Collection#get", ErrNotFound, "%q", key)
	}

	item, err := p.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, opError("Collection#get", err, "")
		}
		return nil, providerError("Collection#get", err)
	}
	return item, nil
}

// Set writes key through the provider and stores the item locally. A nil
// value stores an item with no content.
func (c *Collection) Set(ctx context.Context, key string, value any) error {
	item, err := NewItem(key, value)
	if err != nil {
		return opError("Collection#set", err, "")
	}

	p, err := c.resolveProvider("Collection#set")
	if err != nil {
		return err
	}
	if c.options.Provider != "" {
		item.Provider = c.options.Provider
	}
	if p != nil {
		if err := p.Set(ctx, item.Key, item); err != nil {
			return providerError("Collection#set", err)
		}
	}

	_, err = c.SetItem(item.Key, item)
	return err
}

// Find returns the provider's items matching pattern. Without a provider
// it fails with ErrNotImplemented.
func (c *Collection) Find(ctx context.Context, pattern string) ([]*Item, error) {
	p, err := c.resolveProvider("Collection#find")
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, opError("Collection#find", ErrNotImplemented, "")
	}

	items, err := p.Find(ctx, pattern)
	if err != nil {
		return nil, providerError("Collection#find", err)
	}
	return items, nil
}

// Delete removes key from the provider and the local map. Without a
// provider it fails with ErrNotImplemented.
func (c *Collection) Delete(ctx context.Context, key string) error {
	p, err := c.resolveProvider("Collection#delete")
	if err != nil {
		return err
	}
	if p == nil {
		return opError("Collection#delete", ErrNotImplemented, "")
	}

	if err := p.Delete(ctx, key); err != nil {
		if errors.Is(err, ErrNotFound) {
			return opError("Collection#delete", err, "")
		}
		return providerError("Collection#delete", err)
	}
	c.remove(key)
	return nil
}

// resolveProvider returns the bound provider, then the registry provider
// named by the options. A nil provider with no error means the base
// behaviour applies.
func (c *Collection) resolveProvider(op string) (Provider, error) {
	if c.provider != nil {
		return c.provider, nil
	}
	if c.registry == nil {
		return nil, nil
	}
	name := c.options.Provider
	if name == "" && !c.registry.hasDefaultProvider() {
		return nil, nil
	}
	p, err := c.registry.Provider(name)
	if err != nil {
		return nil, opError(op, err, "")
	}
	return p, nil
}

func (c *Collection) emit(ev Event) {
	ev.Store = c
	ev.Source = c.Name()
	ev.Options = c.options
	if ev.Key == "" && ev.Item != nil {
		ev.Key = ev.Item.Key
	}
	c.emitter.Emit(ev)
}

func (c *Collection) attach(r *Registry, name string) {
	c.registry = r
	if name != "" {
		c.name = name
	}
}

func (c *Collection) bindAccessors(pair *accessorPair) { c.accessors = pair }

func (c *Collection) extend(r *Registry) bool {
	if c.bound == r {
		return false
	}
	c.bound = r
	return true
}
