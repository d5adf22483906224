package config

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NavItem is one entry of the navbar. The concrete type is one of *Link,
// *Dropdown or *DocLink; other packages switch on it and cannot add variants.
type NavItem interface {
	ItemLabel() string
	ItemPosition() Position
	isNavItem()
}

// Link points at an internal route (To) or an external URL (Href).
type Link struct {
	Label    string
	To       string
	Href     string
	Position Position
}

// Dropdown groups child items under a label.
type Dropdown struct {
	Label    string
	Position Position
	Items    NavItems
}

// DocLink points at a documentation page by id.
type DocLink struct {
	Label    string
	DocID    string
	Position Position
}

// NewLink returns a link to an internal route or any target written as "to".
func NewLink(label, to string, pos Position) *Link {
	return &Link{Label: label, To: to, Position: pos}
}

// NewHrefLink returns a plain hyperlink.
func NewHrefLink(label, href string, pos Position) *Link {
	return &Link{Label: label, Href: href, Position: pos}
}

// NewDropdown returns a dropdown owning items.
func NewDropdown(label string, pos Position, items ...NavItem) *Dropdown {
	var children NavItems
	if len(items) > 0 {
		children = append(children, items...)
	}
	return &Dropdown{Label: label, Position: pos, Items: children}
}

// NewDocLink returns a link to the document with the given id.
func NewDocLink(label, docID string, pos Position) *DocLink {
	return &DocLink{Label: label, DocID: docID, Position: pos}
}

func (l *Link) ItemLabel() string      { return l.Label }
func (l *Link) ItemPosition() Position { return l.Position }
func (*Link) isNavItem()               {}

func (d *Dropdown) ItemLabel() string      { return d.Label }
func (d *Dropdown) ItemPosition() Position { return d.Position }
func (*Dropdown) isNavItem()               {}

func (d *DocLink) ItemLabel() string      { return d.Label }
func (d *DocLink) ItemPosition() Position { return d.Position }
func (*DocLink) isNavItem()               {}

// Target returns Href when set, otherwise To.
func (l *Link) Target() string {
	if l.Href != "" {
		return l.Href
	}
	return l.To
}

// NavItems is an ordered list of navbar entries.
type NavItems []NavItem

// NavItemError reports a navbar entry whose variant cannot be determined.
// Path is relative to the list being decoded, e.g. "[1].items[0]".
type NavItemError struct {
	Path   string
	Reason string
}

func (e *NavItemError) Error() string {
	return fmt.Sprintf("nav item %s: %s", e.Path, e.Reason)
}

func (e *NavItemError) prefixed(p string) *NavItemError {
	return &NavItemError{Path: p + e.Path, Reason: e.Reason}
}

// navItemDoc is the wire shape shared by all variants.
type navItemDoc struct {
	Type     string   `yaml:"type,omitempty"`
	Label    string   `yaml:"label,omitempty"`
	Position Position `yaml:"position,omitempty"`
	To       string   `yaml:"to,omitempty"`
	Href     string   `yaml:"href,omitempty"`
	DocID    string   `yaml:"docId,omitempty"`
	Items    NavItems `yaml:"items,omitempty"`
}

// rawNavItem keeps items undecoded so presence can be told apart from absence.
type rawNavItem struct {
	Type     string    `yaml:"type"`
	Label    string    `yaml:"label"`
	Position string    `yaml:"position"`
	To       string    `yaml:"to"`
	Href     string    `yaml:"href"`
	DocID    string    `yaml:"docId"`
	Items    yaml.Node `yaml:"items"`
}

// UnmarshalYAML decodes a sequence of navbar entries, choosing each variant
// from its type and which target fields are present.
func (n *NavItems) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return &NavItemError{Reason: "items must be a list"}
	}
	if len(value.Content) == 0 {
		*n = nil
		return nil
	}
	items := make(NavItems, 0, len(value.Content))
	for i, child := range value.Content {
		item, err := decodeNavItem(child)
		if err != nil {
			return prefixNavError(err, fmt.Sprintf("[%d]", i))
		}
		items = append(items, item)
	}
	*n = items
	return nil
}

func decodeNavItem(node *yaml.Node) (NavItem, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &NavItemError{Reason: "expected a mapping"}
	}
	var raw rawNavItem
	if err := node.Decode(&raw); err != nil {
		return nil, &NavItemError{Reason: err.Error()}
	}

	pos := Position("")
	if strings.TrimSpace(raw.Position) != "" {
		if pos = NormalizePosition(raw.Position); pos == "" {
			return nil, &NavItemError{Reason: fmt.Sprintf("unknown position %q", raw.Position)}
		}
	}
	hasItems := raw.Items.Kind != 0 && raw.Items.Tag != "!!null"

	switch typ := strings.ToLower(strings.TrimSpace(raw.Type)); {
	case typ == "doc":
		if raw.DocID == "" {
			return nil, &NavItemError{Reason: "doc item requires docId"}
		}
		if raw.To != "" || raw.Href != "" || hasItems {
			return nil, &NavItemError{Reason: "doc item cannot carry to, href or items"}
		}
		return &DocLink{Label: raw.Label, DocID: raw.DocID, Position: pos}, nil

	case typ == "dropdown" || (typ == "" && hasItems):
		if raw.To != "" || raw.Href != "" || raw.DocID != "" {
			return nil, &NavItemError{Reason: "dropdown cannot carry to, href or docId"}
		}
		if !hasItems {
			return nil, &NavItemError{Reason: "dropdown requires items"}
		}
		var children NavItems
		if err := raw.Items.Decode(&children); err != nil {
			return nil, prefixNavError(err, ".items")
		}
		if len(children) == 0 {
			return nil, &NavItemError{Reason: "dropdown requires at least one item"}
		}
		return &Dropdown{Label: raw.Label, Position: pos, Items: children}, nil

	case typ == "" || typ == "default":
		if hasItems {
			return nil, &NavItemError{Reason: "link cannot carry items"}
		}
		switch {
		case raw.To != "" && raw.Href != "":
			return nil, &NavItemError{Reason: "link cannot have both to and href"}
		case raw.To != "" || raw.Href != "":
			if raw.DocID != "" {
				return nil, &NavItemError{Reason: "link cannot carry docId"}
			}
			return &Link{Label: raw.Label, To: raw.To, Href: raw.Href, Position: pos}, nil
		case raw.DocID != "":
			return &DocLink{Label: raw.Label, DocID: raw.DocID, Position: pos}, nil
		}
		return nil, &NavItemError{Reason: "neither to, href, docId nor items present"}

	default:
		return nil, &NavItemError{Reason: fmt.Sprintf("unknown type %q", raw.Type)}
	}
}

func prefixNavError(err error, p string) error {
	var ne *NavItemError
	if errors.As(err, &ne) {
		return ne.prefixed(p)
	}
	return &NavItemError{Path: p, Reason: err.Error()}
}

// MarshalYAML emits links without a type key.
func (l *Link) MarshalYAML() (any, error) {
	return navItemDoc{Label: l.Label, Position: l.Position, To: l.To, Href: l.Href}, nil
}

// MarshalYAML emits the dropdown with its children.
func (d *Dropdown) MarshalYAML() (any, error) {
	return navItemDoc{Type: "dropdown", Label: d.Label, Position: d.Position, Items: d.Items}, nil
}

// MarshalYAML emits the doc link with type doc.
func (d *DocLink) MarshalYAML() (any, error) {
	return navItemDoc{Type: "doc", Label: d.Label, Position: d.Position, DocID: d.DocID}, nil
}

// walkNav visits every item depth-first with its configuration path.
func walkNav(items NavItems, base string, fn func(path string, item NavItem, depth int)) {
	walkNavDepth(items, base, 0, fn)
}

func walkNavDepth(items NavItems, base string, depth int, fn func(string, NavItem, int)) {
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", base, i)
		fn(p, item, depth)
		if d, ok := item.(*Dropdown); ok {
			walkNavDepth(d.Items, p+".items", depth+1, fn)
		}
	}
}
