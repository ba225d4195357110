package storage

// GetCollection resolves name by its plural or singular spelling
func (r *Registry) GetCollection(name string) (Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.collections[name]; ok {
		return s, nil
	}
	if plural, ok := r.inflections[name]; ok {
		if s, ok := r.collections[plural]; ok {
			return s, nil
		}
	}
	return nil, opError("Storage#getCollection", ErrCollectionNotFound, "%q", name)
}

// GetItem looks key up in the named collection by exact key, then retries
// with each rename function and finally with the collection's RenameKey
// option. Returns nil on a miss or an unknown collection.
func (r *Registry) GetItem(collection, key string, rename ...RenameFunc) *Item {
	store, err := r.GetCollection(collection)
	if err != nil {
		r.recordLookup("getItem", false)
		return nil
	}

	item := r.lookupRenamed(store, key, rename)
	r.recordLookup("getItem", item != nil)
	return item
}

func (r *Registry) lookupRenamed(store Store, key string, rename []RenameFunc) *Item {
	if item, ok := store.Lookup(key); ok {
		return item
	}
	fns := append(append([]RenameFunc(nil), rename...), store.Options().RenameKey)
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		renamed := fn(key)
		if renamed == "" || renamed == key {
			continue
		}
		if item, ok := store.Lookup(renamed); ok {
			return item
		}
	}
	return nil
}

// Find returns the item name refers to. With a collection name the search
// is restricted to that collection; otherwise collections are searched in
// registration order by exact key, renamed key and then fuzzy lookup.
func (r *Registry) Find(name string, collection ...string) (*Item, error) {
	if name == "" {
		return nil, opError("Storage#find", ErrInvalidInput, "name is required")
	}

	if len(collection) > 0 && collection[0] != "" {
		store, err := r.GetCollection(collection[0])
		if err != nil {
			r.recordLookup("find", false)
			return nil, err
		}
		if item := store.GetItem(name); item != nil {
			r.recordLookup("find", true)
			return item, nil
		}
		r.recordLookup("find", false)
		return nil, opError("Storage#find", ErrNotFound, "%q in %s", name, collection[0])
	}

	for _, plural := range r.CollectionNames() {
		store, err := r.GetCollection(plural)
		if err != nil {
			continue
		}
		item := r.lookupRenamed(store, name, nil)
		if item == nil {
			item = store.GetItem(name)
		}
		if item != nil {
			r.recordLookup("find", true)
			return item, nil
		}
	}

	r.recordLookup("find", false)
	return nil, opError("Storage#find", ErrNotFound, "%q", name)
}
