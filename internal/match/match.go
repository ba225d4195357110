package match

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Target is anything that can be matched by key or path
type Target interface {
	MatchKey() string
	MatchPath() string
}

// File reports whether name refers to the target. A name matches when it is
// equal to the target's path or key, to the base name of either (with or
// without extension), or when it is a glob pattern matching the path or key.
func File(name string, t Target) bool {
	if name == "" || t == nil {
		return false
	}
	name = normalize(name)
	key := normalize(t.MatchKey())
	p := normalize(t.MatchPath())

	for _, candidate := range []string{p, key} {
		if candidate == "" {
			continue
		}
		if name == candidate {
			return true
		}
		base := path.Base(candidate)
		if name == base || name == stem(base) {
			return true
		}
		if stripped := strings.TrimSuffix(candidate, path.Ext(candidate)); name == stripped {
			return true
		}
	}

	if !IsGlob(name) {
		return false
	}
	for _, candidate := range []string{p, key} {
		if candidate == "" {
			continue
		}
		if ok, err := doublestar.Match(name, candidate); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(name, path.Base(candidate)); err == nil && ok {
			return true
		}
	}
	return false
}

// Key reports whether pattern matches a bare key
func Key(pattern, key string) bool {
	return File(pattern, keyTarget(key))
}

// IsGlob reports whether s contains glob metacharacters
func IsGlob(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// Valid reports whether pattern is a well-formed glob
func Valid(pattern string) bool {
	return doublestar.ValidatePattern(normalize(pattern))
}

type keyTarget string

func (k keyTarget) MatchKey() string  { return string(k) }
func (k keyTarget) MatchPath() string { return "" }

func normalize(s string) string {
	return filepath.ToSlash(strings.TrimPrefix(s, "./"))
}

func stem(base string) string {
	return strings.TrimSuffix(base, path.Ext(base))
}
