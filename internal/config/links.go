package config

import (
	"strings"
)

// LinkKind tells the renderer whether a target goes through the site router.
type LinkKind string

const (
	LinkInternal LinkKind = "internal"
	LinkExternal LinkKind = "external"
)

// externalRel is added to every external anchor.
const externalRel = "noopener noreferrer"

// ResolvedLink is the classification of one navbar or footer target.
type ResolvedLink struct {
	Source   string   `json:"source"`
	Label    string   `json:"label,omitempty"`
	Target   string   `json:"target,omitempty"`
	DocID    string   `json:"docId,omitempty"`
	Kind     LinkKind `json:"kind"`
	Position Position `json:"position,omitempty"`
	Rel      string   `json:"rel,omitempty"`
	Window   string   `json:"window,omitempty"`
}

// Classify reports a target as external when it starts with http:// or
// https:// (case-insensitive), and internal otherwise.
func Classify(target string) LinkKind {
	t := strings.ToLower(strings.TrimSpace(target))
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return LinkExternal
	}
	return LinkInternal
}

// IsExternal is shorthand for Classify(target) == LinkExternal.
func IsExternal(target string) bool { return Classify(target) == LinkExternal }

// ResolveLinks classifies every navbar entry (recursively) and footer link
// in document order. Dropdowns themselves carry no target and are skipped.
func ResolveLinks(cfg *Config) []ResolvedLink {
	if cfg == nil {
		return nil
	}
	var out []ResolvedLink
	walkNav(cfg.ThemeConfig.Navbar.Items, "themeConfig.navbar.items", func(path string, item NavItem, _ int) {
		switch v := item.(type) {
		case *Link:
			out = append(out, newResolvedLink(path, v.Label, v.Target(), v.Position))
		case *DocLink:
			out = append(out, ResolvedLink{
				Source:   path,
				Label:    v.Label,
				DocID:    v.DocID,
				Kind:     LinkInternal,
				Position: v.Position,
			})
		}
	})
	walkFooter(cfg.ThemeConfig.Footer, func(path string, l FooterLink) {
		out = append(out, newResolvedLink(path, l.Label, l.Target(), ""))
	})
	return out
}

func newResolvedLink(path, label, target string, pos Position) ResolvedLink {
	rl := ResolvedLink{Source: path, Label: label, Target: target, Kind: Classify(target), Position: pos}
	if rl.Kind == LinkExternal {
		rl.Rel = externalRel
		rl.Window = "_blank"
	}
	return rl
}

// Route maps an internal target onto an absolute path under BaseURL.
// Relative targets are taken from the site root; targets already under
// BaseURL are returned unchanged. External targets are returned as-is.
func (s SiteIdentity) Route(target string) string {
	if IsExternal(target) {
		return target
	}
	base := s.BaseURL
	if base == "" {
		base = "/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	switch {
	case target == "":
		return base
	case strings.HasPrefix(target, base):
		return target
	case strings.HasPrefix(target, "/") && base == "/":
		return target
	default:
		return base + strings.TrimPrefix(target, "/")
	}
}

// PageURL returns the absolute URL of route on this site.
func (s SiteIdentity) PageURL(route string) string {
	if IsExternal(route) {
		return route
	}
	return strings.TrimRight(s.URL, "/") + s.Route(route)
}
