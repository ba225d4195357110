package storage

// SingularAccessor fronts a registered store under its singular name. Add
// commits one item; the embedded Store exposes every collection operation.
type SingularAccessor struct {
	Store
	inflection string
}

// Add commits one item through AddItem
func (a *SingularAccessor) Add(key string, value any) (*Item, error) {
	return a.AddItem(key, value)
}

// Inflection returns the singular name
func (a *SingularAccessor) Inflection() string { return a.inflection }

// List returns the fronted store when it is a List
func (a *SingularAccessor) List() (*List, bool) {
	l, ok := a.Store.(*List)
	return l, ok
}

// PluralAccessor fronts a registered store under its plural name. Add
// commits many items; the embedded Store exposes every collection operation.
type PluralAccessor struct {
	Store
	plural string
}

// Add commits a map or sequence of items through AddItems
func (a *PluralAccessor) Add(items any) error {
	return a.AddItems(items)
}

// Inflection returns the plural name
func (a *PluralAccessor) Inflection() string { return a.plural }

// List returns the fronted store when it is a List
func (a *PluralAccessor) List() (*List, bool) {
	l, ok := a.Store.(*List)
	return l, ok
}

type accessorPair struct {
	singular *SingularAccessor
	plural   *PluralAccessor
}

// Singular returns the single-item accessor for a collection created with
// Create. Either spelling of the name resolves.
func (r *Registry) Singular(name string) (*SingularAccessor, error) {
	pair, err := r.accessorsFor(name)
	if err != nil {
		return nil, err
	}
	return pair.singular, nil
}

// Plural returns the many-item accessor for a collection created with
// Create. Either spelling of the name resolves.
func (r *Registry) Plural(name string) (*PluralAccessor, error) {
	pair, err := r.accessorsFor(name)
	if err != nil {
		return nil, err
	}
	return pair.plural, nil
}

func (r *Registry) accessorsFor(name string) (*accessorPair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plural := name
	if p, ok := r.inflections[name]; ok {
		plural = p
	}
	if pair, ok := r.accessors[plural]; ok {
		return pair, nil
	}
	return nil, opError("Storage#accessor", ErrCollectionNotFound, "%q", name)
}
