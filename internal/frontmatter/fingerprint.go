package frontmatter

import (
	"strings"

	"github.com/inful/mdfp"
)

// volatileKeys do not contribute to a page fingerprint.
var volatileKeys = map[string]bool{
	mdfp.FingerprintField: true,
	"last_update":         true,
}

// Fingerprint hashes a page's frontmatter fields and body. Keys are
// serialized in sorted order with a single trailing newline trimmed, so the
// result does not depend on how the source file formatted its header.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	stable := make(map[string]any, len(fields))
	for k, v := range fields {
		if !volatileKeys[k] {
			stable[k] = v
		}
	}
	fm, err := SerializeYAML(stable)
	if err != nil {
		return "", err
	}
	return mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body)), nil
}

// Document is a parsed markdown source.
type Document struct {
	Fields      map[string]any
	Meta        Meta
	Body        []byte
	Fingerprint string
}

// Parse splits, decodes and fingerprints a markdown source.
func Parse(content []byte) (*Document, error) {
	fm, body, _, err := Split(content)
	if err != nil {
		return nil, err
	}
	fields, err := ParseYAML(fm)
	if err != nil {
		return nil, err
	}
	meta, err := MetaFromFields(fields)
	if err != nil {
		return nil, err
	}
	fp, err := Fingerprint(fields, body)
	if err != nil {
		return nil, err
	}
	return &Document{Fields: fields, Meta: meta, Body: body, Fingerprint: fp}, nil
}
