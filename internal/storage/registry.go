package storage

import (
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/storage/internal/infrastructure/config"
	"github.com/GriffinCanCode/storage/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/storage/internal/inflect"
	"github.com/GriffinCanCode/storage/internal/logging"
)

// Inflector resolves the singular and plural spellings of a name. Both
// methods must be deterministic and idempotent.
type Inflector interface {
	Singular(name string) string
	Plural(name string) string
}

// Registry owns named lists and collections and resolves them by either
// inflection of their name
type Registry struct {
	mu              sync.RWMutex
	collections     map[string]Store
	order           []string
	inflections     map[string]string
	collectionTypes map[string][]string
	accessors       map[string]*accessorPair
	providers       map[string]Provider
	itemHooks       []ItemHook
	collectionHooks []CollectionHook

	emitter   *Emitter
	inflector Inflector
	defaults  *Options
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// Option configures a Registry
type Option func(*Registry)

// WithLogger sets the registry logger
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics enables Prometheus metrics
func WithMetrics(m *monitoring.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithInflector replaces the default inflector
func WithInflector(i Inflector) Option {
	return func(r *Registry) {
		if i != nil {
			r.inflector = i
		}
	}
}

// WithDefaults sets the options every created store starts from
func WithDefaults(o *Options) Option {
	return func(r *Registry) { r.defaults = o.withDefaults(DefaultOptions()) }
}

// WithConfig sets store defaults from environment configuration
func WithConfig(cfg config.StorageConfig) Option {
	return func(r *Registry) { r.defaults = OptionsFromConfig(cfg) }
}

// WithProvider registers a named provider
func WithProvider(name string, p Provider) Option {
	return func(r *Registry) { r.providers[name] = p }
}

// New creates an empty registry
func New(opts ...Option) *Registry {
	r := &Registry{
		collections:     make(map[string]Store),
		inflections:     make(map[string]string),
		collectionTypes: map[string][]string{DefaultCollectionType: {}},
		accessors:       make(map[string]*accessorPair),
		providers:       make(map[string]Provider),
		emitter:         NewEmitter(),
		inflector:       inflect.New(),
		defaults:        DefaultOptions(),
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create builds a list (or a collection when opts.Kind is KindCollection)
// and registers it under the plural form of name. The singular form maps
// to the plural in Inflections. Creating the same name again replaces the
// store under the same plural key.
func (r *Registry) Create(name string, opts *Options) (Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, opError("Storage#create", ErrInvalidInput, "collection name is required")
	}

	o := opts.withDefaults(r.defaults)
	singular := r.inflector.Singular(name)
	plural := r.inflector.Plural(name)
	o.Inflection, o.Plural = singular, plural

	store := r.build(o)
	store.(registryBound).attach(r, plural)
	o = store.Options()

	r.mu.Lock()
	r.inflections[singular] = plural
	if _, exists := r.collections[plural]; !exists {
		r.order = append(r.order, plural)
	}
	r.collections[plural] = store
	for _, t := range o.types() {
		if !slices.Contains(r.collectionTypes[t], plural) {
			r.collectionTypes[t] = append(r.collectionTypes[t], plural)
		}
	}
	pair := &accessorPair{
		singular: &SingularAccessor{Store: store, inflection: singular},
		plural:   &PluralAccessor{Store: store, plural: plural},
	}
	r.accessors[plural] = pair
	active := len(r.collections)
	r.mu.Unlock()

	store.(registryBound).bindAccessors(pair)

	r.ExtendCollection(store, o)
	r.emit(Event{Type: EventCollection, Store: store, Source: plural, Options: o})
	r.emit(Event{Type: EventCreate, Store: store, Source: plural, Options: o})

	if r.metrics != nil {
		r.metrics.RecordCollectionCreated(string(o.kind()), active)
	}
	r.logger.Debug("collection created",
		zap.String("collection", plural),
		zap.String("inflection", singular),
		zap.String("kind", string(o.kind())))
	return store, nil
}

func (r *Registry) build(o *Options) Store {
	if o.kind() == KindCollection {
		return NewCollection(o)
	}
	return NewList(o)
}

// Collection creates an unregistered collection, decorates it and emits
// collection
func (r *Registry) Collection(opts *Options) *Collection {
	o := opts.withDefaults(r.defaults)
	c := NewCollection(o)
	c.attach(r, "")

	r.ExtendCollection(c, c.options)
	r.emit(Event{Type: EventCollection, Store: c, Options: c.options})
	return c
}

// List creates an unregistered list, decorates it and emits list
func (r *Registry) List(opts *Options) *List {
	return r.AdoptList(NewList(opts.withDefaults(r.defaults)))
}

// AdoptList decorates an existing list and emits list. The list is not
// registered under a name.
func (r *Registry) AdoptList(l *List) *List {
	l.attach(r, "")
	r.ExtendCollection(l, l.options)
	r.emit(Event{Type: EventList, Store: l, Source: l.Name(), Options: l.options})

	if r.metrics != nil {
		r.metrics.RecordListCreated()
	}
	return l
}

// ListFrom creates an unregistered list holding copies of store's items in order
func (r *Registry) ListFrom(store Store) (*List, error) {
	o := store.Options().Clone()
	o.Kind = KindList
	o.Inflection, o.Plural = "", ""
	l := r.List(o)
	if err := l.AddList(store); err != nil {
		return nil, err
	}
	return l, nil
}

// ExtendCollection binds store's events to the registry and runs the
// collection hooks. Committed items are re-emitted as item events on the
// registry, and events named after the store's singular inflection are
// forwarded unchanged.
func (r *Registry) ExtendCollection(store Store, opts *Options) {
	if opts == nil {
		opts = store.Options()
	}
	if b, ok := store.(registryBound); ok && b.extend(r) {
		r.bindEvents(store, opts)
	}

	r.mu.RLock()
	hooks := slices.Clone(r.collectionHooks)
	r.mu.RUnlock()
	runCollectionHooks(hooks, store, opts, r)
}

func (r *Registry) bindEvents(store Store, opts *Options) {
	if inflection := opts.Inflection; inflection != "" {
		store.Emitter().On(EventType(inflection), func(ev Event) {
			ev.ID = ""
			r.emit(ev)
		})
	}
}

// bubbleItem re-emits a committed item as a registry item event. Stores
// call it after their own load and item-key events.
func (r *Registry) bubbleItem(store Store, item *Item) {
	opts := store.Options()
	if opts.Provider != "" {
		item.Provider = opts.Provider
	}
	if r.metrics != nil {
		r.metrics.RecordItemAdded(storeLabel(store))
	}
	r.emit(Event{
		Type:    EventItem,
		Key:     item.Key,
		Item:    item,
		Store:   store,
		Source:  store.Name(),
		Options: opts,
	})
}

// ExtendItem runs the registry item hooks on item
func (r *Registry) ExtendItem(item *Item, store Store) *Item {
	r.mu.RLock()
	hooks := slices.Clone(r.itemHooks)
	r.mu.RUnlock()

	runItemHooks(hooks, item, store, r)
	return item
}

// UseItem registers a hook run on items added through AddItem
func (r *Registry) UseItem(hook ItemHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemHooks = append(r.itemHooks, hook)
}

// UseCollection registers a hook run on every created list or collection
func (r *Registry) UseCollection(hook CollectionHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectionHooks = append(r.collectionHooks, hook)
}

// On subscribes h to registry events of type t
func (r *Registry) On(t EventType, h Handler) { r.emitter.On(t, h) }

// Emitter returns the registry's event emitter
func (r *Registry) Emitter() *Emitter { return r.emitter }

func (r *Registry) emit(ev Event) {
	if ev.Source == "" {
		ev.Source = "storage"
	}
	r.emitter.Emit(ev)
}

// SetProvider registers p under name, replacing any previous provider
func (r *Registry) SetProvider(name string, p Provider) {
	r.mu.Lock()
	r.providers[name] = p
	r.mu.Unlock()

	r.logger.Debug("provider registered", zap.String("provider", name))
}

// Provider returns the provider registered under name. An empty name
// selects the default provider from the registry options.
func (r *Registry) Provider(name string) (Provider, error) {
	if name == "" {
		name = r.defaults.Provider
	}
	if name == "" {
		return nil, opError("Storage#provider", ErrNotFound, "no provider name given and no default set")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.providers[name]; ok {
		return p, nil
	}
	return nil, opError("Storage#provider", ErrNotFound, "provider %q", name)
}

func (r *Registry) hasDefaultProvider() bool {
	return r.defaults.Provider != ""
}

// Inflections returns a copy of the singular to plural map
func (r *Registry) Inflections() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.inflections))
	for k, v := range r.inflections {
		out[k] = v
	}
	return out
}

// CollectionTypes returns a copy of the type tag to plural names map
func (r *Registry) CollectionTypes() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]string, len(r.collectionTypes))
	for k, v := range r.collectionTypes {
		out[k] = slices.Clone(v)
	}
	return out
}

// CollectionNames returns the registered plural names in registration order
func (r *Registry) CollectionNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Defaults returns a copy of the options new stores start from
func (r *Registry) Defaults() *Options { return r.defaults.Clone() }

func (r *Registry) recordDrained(collection string, n int, err error) {
	if r.metrics != nil {
		r.metrics.RecordQueueDrained(collection, n)
	}
	if err != nil {
		r.logger.Warn("queue drain aborted",
			zap.String("collection", collection),
			zap.Int("drained", n),
			zap.Error(err))
	}
}

func (r *Registry) recordDeleted(collection string) {
	if r.metrics != nil {
		r.metrics.RecordItemDeleted(collection)
	}
}

func (r *Registry) recordLookup(op string, hit bool) {
	if r.metrics != nil {
		r.metrics.RecordLookup(op, hit)
	}
}
