/*
Package storage provides an in-process registry of named item collections.

Items are keyed records with a data map and a payload. They live in Lists
(ordered, indexed, sortable and paginated) or Collections (keyed maps backed
by an optional Provider). A Registry addresses each store by the singular
and plural spelling of its name and runs an event and hook pipeline as items
and stores are created.

# Features

  - Ordered lists with exact and fuzzy key lookup
  - Optional pager links between neighbouring items
  - Derived sorted lists and pages that share items with their source
  - Decorator-driven queue of extra items drained within AddItem
  - Provider-backed collections with context-aware get/set/find/delete
  - Singular and plural accessors per registered name
  - Typed lifecycle events and ordered item and collection hooks

# Event Order

For every item added with AddItem:

	addItem -> commit -> load -> <item key> -> registry item -> item hooks

For every store created with Create:

	collection hooks -> collection -> create

# Example Usage

	r := storage.New(storage.WithLogger(logger))

	if _, err := r.Create("post", nil); err != nil {
		return err
	}

	post, _ := r.Singular("post")
	post.Add("a.md", map[string]any{"title": "A"})

	posts, _ := r.Plural("posts")
	item := posts.GetItem("a.md")
	fmt.Println(item.Get("title")) // A

# Concurrency

Lists and Collections are not safe for concurrent mutation. The Registry's
name, inflection, provider and hook tables are guarded so lookups may run
from other goroutines.
*/
package storage
