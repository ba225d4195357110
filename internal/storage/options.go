package storage

import (
	"path"
	"slices"

	"github.com/GriffinCanCode/storage/internal/infrastructure/config"
)

// Kind selects the store built by Registry.Create
type Kind string

const (
	KindList       Kind = "list"
	KindCollection Kind = "collection"
)

// DuplicatePolicy controls how a store treats a key it already holds
type DuplicatePolicy string

const (
	// DuplicatesAllow appends duplicates; exact lookups return the first
	// occurrence and fuzzy lookups the last
	DuplicatesAllow DuplicatePolicy = "allow"
	// DuplicatesReject fails the write with ErrDuplicateKey
	DuplicatesReject DuplicatePolicy = "reject"
)

// DefaultCollectionType is the type tag given to collections without one
const DefaultCollectionType = "collection"

// SortOptions holds list sort defaults
type SortOptions struct {
	Reverse bool
}

// RenameFunc maps a lookup key to the key an item was stored under
type RenameFunc func(key string) string

// Options configures a List or Collection
type Options struct {
	Kind          Kind
	Pager         bool
	PageSize      int
	MaxQueueDrain int
	Duplicates    DuplicatePolicy
	Provider      string
	Sort          SortOptions
	Types         []string
	RenameKey     RenameFunc

	// Set by Registry.Create
	Inflection string
	Plural     string
}

// DefaultOptions returns the built-in defaults
func DefaultOptions() *Options {
	return &Options{
		Kind:          KindList,
		PageSize:      10,
		MaxQueueDrain: 1000,
		Duplicates:    DuplicatesAllow,
		Types:         []string{DefaultCollectionType},
		RenameKey:     path.Base,
	}
}

// OptionsFromConfig converts environment configuration into store defaults
func OptionsFromConfig(cfg config.StorageConfig) *Options {
	opts := DefaultOptions()
	opts.Pager = cfg.Pager
	if cfg.PageSize > 0 {
		opts.PageSize = cfg.PageSize
	}
	if cfg.MaxQueueDrain > 0 {
		opts.MaxQueueDrain = cfg.MaxQueueDrain
	}
	if cfg.Duplicates != "" {
		opts.Duplicates = DuplicatePolicy(cfg.Duplicates)
	}
	opts.Provider = cfg.Provider
	return opts
}

// Clone returns a copy that shares no slices with o
func (o *Options) Clone() *Options {
	if o == nil {
		return DefaultOptions()
	}
	c := *o
	c.Types = slices.Clone(o.Types)
	return &c
}

// withDefaults returns a copy of o with zero fields filled from d. Boolean
// flags are enabled when either side enables them.
func (o *Options) withDefaults(d *Options) *Options {
	if d == nil {
		d = DefaultOptions()
	}
	if o == nil {
		return d.Clone()
	}
	c := o.Clone()
	if c.Kind == "" {
		c.Kind = d.Kind
	}
	c.Pager = c.Pager || d.Pager
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.MaxQueueDrain <= 0 {
		c.MaxQueueDrain = d.MaxQueueDrain
	}
	if c.Duplicates == "" {
		c.Duplicates = d.Duplicates
	}
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	c.Sort.Reverse = c.Sort.Reverse || d.Sort.Reverse
	if len(c.Types) == 0 {
		c.Types = slices.Clone(d.Types)
	}
	if c.RenameKey == nil {
		c.RenameKey = d.RenameKey
	}
	return c
}

func (o *Options) kind() Kind {
	if o.Kind == "" {
		return KindList
	}
	return o.Kind
}

func (o *Options) types() []string {
	if len(o.Types) == 0 {
		return []string{DefaultCollectionType}
	}
	return o.Types
}

func (o *Options) drainLimit() int {
	if o.MaxQueueDrain <= 0 {
		return DefaultOptions().MaxQueueDrain
	}
	return o.MaxQueueDrain
}
