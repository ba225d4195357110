// Package match decides whether a lookup name refers to an item.
//
// It backs the fuzzy fallback of list lookups. Names match on exact path or
// key, on base name, on base name without extension, or as doublestar glob
// patterns.
//
// Example Usage:
//
//	match.File("a.md", item)          // exact or base name
//	match.File("a", item)             // base name without extension
//	match.File("content/**/*.md", it) // glob
package match
