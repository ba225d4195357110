package storage

import (
	"fmt"
	"slices"
	"sort"

	"github.com/GriffinCanCode/storage/internal/match"
	"github.com/GriffinCanCode/storage/internal/paginate"
	"github.com/GriffinCanCode/storage/internal/shared/id"
	"github.com/GriffinCanCode/storage/internal/sortby"
)

// List is an ordered, indexed sequence of items. keys[i] holds the key
// items[i] was committed under; both slices always have the same length.
type List struct {
	id        id.ListID
	name      string
	items     []*Item
	keys      []string
	queue     []pending
	options   *Options
	emitter   *Emitter
	hooks     []ItemHook
	registry  *Registry
	bound     *Registry
	accessors *accessorPair
	loaded    bool
}

type pending struct {
	key   string
	value any
}

// NewList creates an empty list. A nil opts uses DefaultOptions.
func NewList(opts *Options) *List {
	return &List{
		id:      id.NewListID(),
		options: opts.withDefaults(nil),
		emitter: NewEmitter(),
	}
}

// ID returns the list identifier
func (l *List) ID() id.ListID { return l.id }

// Name returns the plural name the list is registered under, if any
func (l *List) Name() string {
	if l.name != "" {
		return l.name
	}
	return l.options.Plural
}

// SetItem commits an item without emitting addItem or draining the queue.
// Pager links are computed against the current tail before the append.
func (l *List) SetItem(key string, value any) (*Item, error) {
	item, err := NewItem(key, value)
	if err != nil {
		return nil, opError("List#setItem", err, "")
	}
	if item.Key == "" {
		return nil, opError("List#setItem", ErrInvalidInput, "item key is required")
	}
	if l.options.Duplicates == DuplicatesReject && slices.Contains(l.keys, item.Key) {
		return nil, opError("List#setItem", ErrDuplicateKey, "%q", item.Key)
	}

	if l.options.Pager {
		l.link(item)
	}
	l.items = append(l.items, item)
	l.keys = append(l.keys, item.Key)
	item.commit(l)

	runItemHooks(l.hooks, item, l, l.registry)
	l.emit(Event{Type: EventLoad, Item: item})
	l.emit(Event{Type: EventType(item.Key), Item: item})
	if l.bound != nil {
		l.bound.bubbleItem(l, item)
	}
	return item, nil
}

func (l *List) link(item *Item) {
	item.Pager = &Pager{Index: len(l.items), Current: item}
	if n := len(l.items); n > 0 {
		prev := l.items[n-1]
		item.Pager.Prev = prev
		if prev.Pager != nil {
			prev.Pager.Next = item
		}
	}
}

// AddItem emits addItem, commits the item, drains the pending queue and
// runs the decoration pipeline on the committed item. Entries enqueued by
// the pipeline are drained before AddItem returns. When the queue exceeds
// Options.MaxQueueDrain the remaining entries are dropped and
// ErrQueueOverflow is returned alongside the committed item.
func (l *List) AddItem(key string, value any) (*Item, error) {
	l.emit(Event{Type: EventAddItem, Key: key, Args: []any{key, value}})

	item, err := l.SetItem(key, value)
	if err != nil {
		l.queue = nil
		return nil, err
	}

	budget := l.options.drainLimit()
	drained, err := l.drain(&budget)
	if err == nil {
		l.ExtendItem(item)
		var more int
		more, err = l.drain(&budget)
		drained += more
	}

	if r := l.registry; r != nil {
		r.recordDrained(l.Name(), drained, err)
	}
	return item, err
}

func (l *List) drain(budget *int) (int, error) {
	n := 0
	for len(l.queue) > 0 {
		if *budget <= 0 {
			dropped := len(l.queue)
			l.queue = nil
			return n, opError("List#addItem", ErrQueueOverflow, "dropped %d pending items after %d", dropped, l.options.drainLimit())
		}
		next := l.queue[0]
		l.queue = l.queue[1:]
		*budget--

		if _, err := l.SetItem(next.key, next.value); err != nil {
			l.queue = nil
			return n, err
		}
		n++
	}
	return n, nil
}

// Enqueue schedules an item to be committed by the AddItem call in progress
func (l *List) Enqueue(key string, value any) {
	l.queue = append(l.queue, pending{key: key, value: value})
}

// Pending returns the number of queued entries
func (l *List) Pending() int { return len(l.queue) }

// AddItems adds every entry of a map in sorted key order. Sequences and
// other stores are handed to AddList.
func (l *List) AddItems(items any) error {
	if isSequence(items) {
		return l.AddList(items)
	}

	keys, values, err := mapEntries("List#addItems", items)
	if err != nil {
		return err
	}

	l.emit(Event{Type: EventAddItems, Args: []any{items}})
	if l.loaded {
		l.loaded = false
		return nil
	}
	if err := checkEntries("List#addItems", l, keys, values); err != nil {
		return err
	}

	for _, key := range keys {
		if _, err := l.AddItem(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

// AddList adds a sequence of items in order, keyed by path (or key when
// the path is empty). fn runs on each item before any is added. Input that
// is not a sequence, an entry without a key, or a duplicate key under
// DuplicatesReject fails with ErrInvalidInput before anything is added.
func (l *List) AddList(list any, fn ...func(*Item)) error {
	l.emit(Event{Type: EventAddList, Args: []any{list}})
	if l.loaded {
		l.loaded = false
		return nil
	}

	items, err := itemsFrom("List#addList", list)
	if err != nil {
		return err
	}
	for _, item := range items {
		for _, f := range fn {
			if f != nil {
				f(item)
			}
		}
	}
	if err := checkBatch("List#addList", l, batchKeys(items)); err != nil {
		return err
	}

	for _, item := range items {
		if _, err := l.AddItem(keyOf(item), item); err != nil {
			return err
		}
	}
	return nil
}

// MarkLoaded tells the next AddItems or AddList call that a listener has
// already loaded the items
func (l *List) MarkLoaded() { l.loaded = true }

// GetIndex resolves key to an index. Exact keys are matched from the front
// so the first occurrence wins; otherwise items are scanned from the back
// with fuzzy file matching so the last match wins. Returns -1 on a miss.
func (l *List) GetIndex(key string) int {
	if key == "" {
		return -1
	}
	if i := slices.Index(l.keys, key); i >= 0 {
		return i
	}
	for i := len(l.items) - 1; i >= 0; i-- {
		if match.File(key, l.items[i]) {
			return i
		}
	}
	return -1
}

// IndexOf returns the index of item, by identity first and then by key
func (l *List) IndexOf(item *Item) int {
	if item == nil {
		return -1
	}
	if i := slices.Index(l.items, item); i >= 0 {
		return i
	}
	return l.GetIndex(item.Key)
}

// GetItem returns the item resolved by GetIndex, or nil
func (l *List) GetItem(key string) *Item {
	if i := l.GetIndex(key); i >= 0 {
		return l.items[i]
	}
	return nil
}

// GetView is an alias for GetItem
func (l *List) GetView(key string) *Item { return l.GetItem(key) }

// Lookup returns the first item committed under exactly key
func (l *List) Lookup(key string) (*Item, bool) {
	if i := slices.Index(l.keys, key); i >= 0 {
		return l.items[i], true
	}
	return nil, false
}

// HasItem reports whether key resolves to an item
func (l *List) HasItem(key string) bool { return l.GetIndex(key) >= 0 }

// DeleteItem removes the item key resolves to. Reports whether one was removed.
func (l *List) DeleteItem(key string) bool {
	return l.removeAt(l.GetIndex(key))
}

// RemoveItem removes item from the list. Reports whether it was present.
func (l *List) RemoveItem(item *Item) bool {
	return l.removeAt(l.IndexOf(item))
}

func (l *List) removeAt(i int) bool {
	if i < 0 || i >= len(l.items) {
		return false
	}

	item := l.items[i]
	if p := item.Pager; p != nil && item.owner == l {
		if p.Prev != nil && p.Prev.Pager != nil {
			p.Prev.Pager.Next = p.Next
		}
		if p.Next != nil && p.Next.Pager != nil {
			p.Next.Pager.Prev = p.Prev
		}
	}

	l.items = slices.Delete(l.items, i, i+1)
	l.keys = slices.Delete(l.keys, i, i+1)
	item.release(l)

	if r := l.registry; r != nil {
		r.recordDeleted(l.Name())
	}
	return true
}

// ExtendItem runs the owning registry's item pipeline on item
func (l *List) ExtendItem(item *Item) *Item {
	if l.registry != nil {
		l.registry.ExtendItem(item, l)
	}
	return item
}

// Use registers a hook run on every item committed to this list
func (l *List) Use(hook ItemHook) {
	l.hooks = append(l.hooks, hook)
}

// ByField orders items by the value at a dotted property path
func ByField(path string) sortby.Criterion[*Item] {
	return sortby.Field[*Item](path)
}

// SortBy returns a new list holding the same items ordered by criteria. The
// first criterion is primary and later ones break ties; with no criteria
// items are ordered by key. Options.Sort.Reverse reverses the result. The
// receiver is not modified and the new list emits no events.
func (l *List) SortBy(criteria ...sortby.Criterion[*Item]) *List {
	if len(criteria) == 0 {
		criteria = []sortby.Criterion[*Item]{ByField("key")}
	}
	order := sortby.Indices(l.items, criteria...)
	if l.options.Sort.Reverse {
		slices.Reverse(order)
	}
	return l.derive(order)
}

func (l *List) derive(order []int) *List {
	out := &List{
		id:      id.NewListID(),
		name:    l.name,
		items:   make([]*Item, len(order)),
		keys:    make([]string, len(order)),
		options: l.options.Clone(),
		emitter: NewEmitter(),
	}
	for i, j := range order {
		out.items[i] = l.items[j]
		out.keys[i] = l.keys[j]
	}
	return out
}

// Paginate splits a copy of the items into pages. A non-positive limit
// falls back to Options.PageSize.
func (l *List) Paginate(opts paginate.Options) []paginate.Page[*Item] {
	if opts.Limit <= 0 {
		opts.Limit = l.options.PageSize
	}
	return paginate.Pages(slices.Clone(l.items), opts)
}

// GroupBy groups items by the value at path. Items whose value is a list
// appear in one group per element.
func (l *List) GroupBy(path string) map[string][]*Item {
	groups := make(map[string][]*Item)
	for _, item := range l.items {
		for _, key := range groupKeys(item.Get(path)) {
			groups[key] = append(groups[key], item)
		}
	}
	return groups
}

// GroupKeys returns the sorted group names GroupBy would produce
func (l *List) GroupKeys(path string) []string {
	groups := l.GroupBy(path)
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func groupKeys(v any) []string {
	switch val := v.(type) {
	case nil:
		return []string{""}
	case []string:
		return val
	case []any:
		out := make([]string, len(val))
		for i, e := range val {
			out[i] = fmt.Sprint(e)
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}

// Items returns the items in order
func (l *List) Items() []*Item { return slices.Clone(l.items) }

// Keys returns the committed keys in order
func (l *List) Keys() []string { return slices.Clone(l.keys) }

// Len returns the number of items
func (l *List) Len() int { return len(l.items) }

// Accessors returns the singular and plural handles the list is
// registered under. Both are nil until Registry.Create registers it.
func (l *List) Accessors() (*SingularAccessor, *PluralAccessor) {
	if l.accessors == nil {
		return nil, nil
	}
	return l.accessors.singular, l.accessors.plural
}

// Options returns the list options
func (l *List) Options() *Options { return l.options }

// Emitter returns the list's event emitter
func (l *List) Emitter() *Emitter { return l.emitter }

// On subscribes h to list events of type t
func (l *List) On(t EventType, h Handler) { l.emitter.On(t, h) }

func (l *List) emit(ev Event) {
	ev.Store = l
	ev.Source = l.Name()
	ev.Options = l.options
	if ev.Key == "" && ev.Item != nil {
		ev.Key = ev.Item.Key
	}
	l.emitter.Emit(ev)
}

func (l *List) attach(r *Registry, name string) {
	l.registry = r
	if name != "" {
		l.name = name
	}
}

func (l *List) bindAccessors(pair *accessorPair) { l.accessors = pair }

func (l *List) extend(r *Registry) bool {
	if l.bound == r {
		return false
	}
	l.bound = r
	return true
}
