package markdown

import (
	"bytes"
	"sort"

	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// ExtractLinks returns the links, images and autolinks of body in document
// order, followed by reference definitions sorted by label. Code spans and
// code blocks are not inspected.
func ExtractLinks(body []byte, opts Options) ([]Link, error) {
	ctx := parser.NewContext()
	root := newMarkdown(opts).Parser().Parse(text.NewReader(body), parser.WithContext(ctx))

	var links []Link
	err := gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body)), Line: lineOf(node, body)})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination), Line: lineOf(node, body)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination), Line: lineOf(node, body)})
		}
		return gmast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	refs := ctx.References()
	sort.Slice(refs, func(i, j int) bool {
		return string(refs[i].Label()) < string(refs[j].Label())
	})
	for _, ref := range refs {
		links = append(links, Link{Kind: LinkKindReferenceDefinition, Destination: string(ref.Destination())})
	}
	return links, nil
}

// lineOf reports the first source line of the block containing n.
func lineOf(n gmast.Node, source []byte) int {
	for p := n; p != nil; p = p.Parent() {
		if p.Type() != gmast.TypeBlock {
			continue
		}
		if lines := p.Lines(); lines != nil && lines.Len() > 0 {
			return bytes.Count(source[:lines.At(0).Start], []byte("\n")) + 1
		}
	}
	return 0
}
