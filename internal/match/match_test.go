package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type target struct {
	key  string
	path string
}

func (t target) MatchKey() string  { return t.key }
func (t target) MatchPath() string { return t.path }

func TestFile(t *testing.T) {
	item := target{key: "posts/a.md", path: "content/posts/a.md"}

	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"exact path", "content/posts/a.md", true},
		{"exact key", "posts/a.md", true},
		{"base name", "a.md", true},
		{"stem", "a", true},
		{"path without extension", "content/posts/a", true},
		{"dot slash prefix", "./content/posts/a.md", true},
		{"glob on path", "content/**/*.md", true},
		{"glob on base", "*.md", true},
		{"glob miss", "*.txt", false},
		{"different file", "b.md", false},
		{"partial name", "a.m", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, File(tt.in, item))
		})
	}
}

func TestFileWithoutPath(t *testing.T) {
	item := target{key: "about.html"}

	assert.True(t, File("about", item))
	assert.True(t, File("about.html", item))
	assert.False(t, File("contact", item))
}

func TestKey(t *testing.T) {
	assert.True(t, Key("a", "dir/a.md"))
	assert.True(t, Key("dir/*.md", "dir/a.md"))
	assert.False(t, Key("b", "dir/a.md"))
}

func TestIsGlobAndValid(t *testing.T) {
	assert.True(t, IsGlob("*.md"))
	assert.True(t, IsGlob("a?.md"))
	assert.False(t, IsGlob("a.md"))

	assert.True(t, Valid("**/*.md"))
	assert.False(t, Valid("[a-"))
}
