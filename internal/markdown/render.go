package markdown

import (
	"bytes"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows user generated markup and forces safe attributes on links
// that leave the site.
var policy = sync.OnceValue(func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	return p
})

// Render converts a markdown fragment to sanitized HTML.
func Render(src []byte, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := newMarkdown(opts).Convert(src, &buf); err != nil {
		return nil, err
	}
	return policy().SanitizeBytes(buf.Bytes()), nil
}
