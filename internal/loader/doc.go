// Package loader reads content files from disk into storage items.
//
// Each file becomes one item keyed by its slash-separated path relative to the
// load root. A leading front matter block is decoded into the item data:
//
//	---
//	title: Hello
//	tags: [go, storage]
//	---
//	Body text becomes the payload.
//
// YAML blocks are delimited by "---" and TOML blocks by "+++". The payload's
// content type is detected from its bytes.
//
// Example Usage:
//
//	l, err := loader.New(loader.WithPattern("**/*.md"))
//	if err != nil {
//		return err
//	}
//	items, err := l.Load(ctx, "content/posts")
//	if err != nil {
//		return err
//	}
//	err = posts.AddList(items)
package loader
