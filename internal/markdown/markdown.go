// Package markdown parses markdown sources with goldmark for link analysis
// and renders short markdown fragments into sanitized HTML.
package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Options controls the goldmark configuration.
type Options struct {
	// GFM enables tables, strikethrough, linkify and task lists.
	GFM bool
}

func newMarkdown(opts Options) goldmark.Markdown {
	if opts.GFM {
		return goldmark.New(goldmark.WithExtensions(extension.GFM))
	}
	return goldmark.New()
}

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

// Link is one link-like construct found in a markdown body. Line is 1-based
// and zero when goldmark keeps no position (reference definitions).
type Link struct {
	Kind        LinkKind
	Destination string
	Line        int
}
