package storage

// ItemHook decorates an item after it is committed. r is nil for stores not
// owned by a registry.
type ItemHook func(item *Item, store Store, r *Registry)

// CollectionHook decorates a list or collection after it is created
type CollectionHook func(store Store, opts *Options, r *Registry)

func runItemHooks(hooks []ItemHook, item *Item, store Store, r *Registry) {
	for _, h := range hooks {
		h(item, store, r)
	}
}

func runCollectionHooks(hooks []CollectionHook, store Store, opts *Options, r *Registry) {
	for _, h := range hooks {
		h(store, opts, r)
	}
}
