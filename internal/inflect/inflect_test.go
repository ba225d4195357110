package inflect

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlural(t *testing.T) {
	inf := New()

	tests := []struct {
		in   string
		want string
	}{
		{"post", "posts"},
		{"page", "pages"},
		{"category", "categories"},
		{"person", "people"},
		{"posts", "posts"},
		{"people", "people"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, inf.Plural(tt.in))
		})
	}
}

func TestSingular(t *testing.T) {
	inf := New()

	assert.Equal(t, "post", inf.Singular("posts"))
	assert.Equal(t, "post", inf.Singular("post"))
	assert.Equal(t, "category", inf.Singular("categories"))
	assert.Equal(t, "person", inf.Singular("people"))
}

func TestIdempotent(t *testing.T) {
	inf := New()

	for _, name := range []string{"post", "page", "layout", "category", "box"} {
		plural := inf.Plural(name)
		assert.Equal(t, plural, inf.Plural(plural), name)

		singular := inf.Singular(name)
		assert.Equal(t, singular, inf.Singular(singular), name)
		assert.Equal(t, name, inf.Singular(plural), name)
	}
}

func TestAddIrregular(t *testing.T) {
	inf := New()
	inf.AddIrregular("octopus", "octopodes")

	assert.Equal(t, "octopodes", inf.Plural("octopus"))
	assert.Equal(t, "octopus", inf.Singular("octopodes"))
}

func TestSeparateInflectorsShareRules(t *testing.T) {
	writer, reader := New(), New()

	var wg sync.WaitGroup
	for n := 0; n < 8; n++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			writer.AddIrregular(fmt.Sprintf("cactus%d", n), fmt.Sprintf("cacti%d", n))
		}(n)
		go func() {
			defer wg.Done()
			assert.Equal(t, "posts", reader.Plural("post"))
		}()
	}
	wg.Wait()

	assert.Equal(t, "cacti3", reader.Plural("cactus3"))
	assert.Equal(t, "cactus3", reader.Singular("cacti3"))
}
