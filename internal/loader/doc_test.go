package loader

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageDocKeepsPatternExample(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "doc.go", nil, parser.ParseComments)
	require.NoError(t, err)
	require.NotNil(t, f.Doc)
	assert.Contains(t, f.Doc.Text(), `loader.WithPattern("**/*.md")`)
}
