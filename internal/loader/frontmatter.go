package loader

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format identifies a front matter encoding
type Format string

const (
	FormatNone Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var delimiters = []struct {
	marker []byte
	format Format
}{
	{[]byte("---"), FormatYAML},
	{[]byte("+++"), FormatTOML},
}

// SplitFrontMatter separates a leading front matter block from the body.
// The block opens and closes with a line holding only "---" (YAML) or
// "+++" (TOML). Without a complete block the whole input is the body.
func SplitFrontMatter(data []byte) (Format, []byte, []byte) {
	for _, d := range delimiters {
		if !bytes.HasPrefix(data, d.marker) {
			continue
		}
		rest, ok := afterLine(data[len(d.marker):])
		if !ok {
			continue
		}

		var end int
		if bytes.HasPrefix(rest, d.marker) {
			end = 0
		} else {
			i := bytes.Index(rest, append([]byte("\n"), d.marker...))
			if i < 0 {
				continue
			}
			end = i + 1
		}

		matter := rest[:end]
		body, _ := afterLine(rest[end+len(d.marker):])
		return d.format, matter, body
	}
	return FormatNone, nil, data
}

// afterLine skips trailing whitespace up to and including the next newline.
// It reports false when non-space characters precede the newline.
func afterLine(b []byte) ([]byte, bool) {
	nl := bytes.IndexByte(b, '\n')
	if nl < 0 {
		if len(bytes.TrimSpace(b)) != 0 {
			return nil, false
		}
		return nil, true
	}
	if len(bytes.TrimSpace(b[:nl])) != 0 {
		return nil, false
	}
	return b[nl+1:], true
}

// ParseFrontMatter decodes a front matter block into a map
func ParseFrontMatter(format Format, matter []byte) (map[string]any, error) {
	data := make(map[string]any)
	if len(bytes.TrimSpace(matter)) == 0 {
		return data, nil
	}

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(matter, &data); err != nil {
			return nil, fmt.Errorf("parse yaml front matter: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(matter, &data); err != nil {
			return nil, fmt.Errorf("parse toml front matter: %w", err)
		}
	case FormatNone:
	default:
		return nil, fmt.Errorf("unknown front matter format %q", format)
	}
	return data, nil
}
