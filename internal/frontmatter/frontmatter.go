// Package frontmatter reads the YAML header of markdown sources: the page id,
// slug and title used to build the route index, plus a content fingerprint.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnterminated is returned when a document opens a frontmatter block but never closes it.
var ErrUnterminated = errors.New("frontmatter opened with --- but never closed")

const delimiter = "---"

// Split separates a leading `---` delimited YAML block from the body. LF and
// CRLF line endings are both accepted. When the document has no frontmatter,
// had is false and body is content unchanged.
func Split(content []byte) (fm, body []byte, had bool, err error) {
	nl := lineEnding(content)
	open := []byte(delimiter + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}
	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		return []byte{}, rest[len(open):], true, nil
	}

	closing := []byte(nl + delimiter)
	for off := 0; ; {
		idx := bytes.Index(rest[off:], closing)
		if idx < 0 {
			return nil, nil, false, ErrUnterminated
		}
		end := off + idx + len(closing)
		// The closing delimiter must fill its line.
		switch {
		case end == len(rest):
			return rest[:off+idx+len(nl)], nil, true, nil
		case bytes.HasPrefix(rest[end:], []byte(nl)):
			return rest[:off+idx+len(nl)], rest[end+len(nl):], true, nil
		}
		off = end
	}
}

func lineEnding(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// ParseYAML decodes raw frontmatter into a map. Empty input yields an empty map.
func ParseYAML(fm []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(fm)) == 0 {
		return fields, nil
	}
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// Meta is the subset of page frontmatter that affects routing.
type Meta struct {
	ID           string
	Slug         string
	Title        string
	SidebarLabel string
	Draft        bool
	Unlisted     bool
}

// MetaFromFields reads the routing keys from decoded frontmatter. Keys with
// the wrong type are reported; unknown keys are ignored.
func MetaFromFields(fields map[string]any) (Meta, error) {
	var m Meta
	strs := []struct {
		key string
		dst *string
	}{
		{"id", &m.ID},
		{"slug", &m.Slug},
		{"title", &m.Title},
		{"sidebar_label", &m.SidebarLabel},
	}
	for _, s := range strs {
		v, ok := fields[s.key]
		if !ok || v == nil {
			continue
		}
		switch vv := v.(type) {
		case string:
			*s.dst = strings.TrimSpace(vv)
		case int, int64, float64:
			*s.dst = fmt.Sprint(vv)
		default:
			return Meta{}, fmt.Errorf("frontmatter key %q must be a string, got %T", s.key, v)
		}
	}
	bools := []struct {
		key string
		dst *bool
	}{
		{"draft", &m.Draft},
		{"unlisted", &m.Unlisted},
	}
	for _, b := range bools {
		v, ok := fields[b.key]
		if !ok || v == nil {
			continue
		}
		bv, ok := v.(bool)
		if !ok {
			return Meta{}, fmt.Errorf("frontmatter key %q must be a boolean, got %T", b.key, v)
		}
		*b.dst = bv
	}
	return m, nil
}
