// Package routes discovers the pages a site will publish and checks the
// configured navigation and markdown links against them.
package routes

import (
	"net/url"
	"path"
	"sort"
	"strings"

	"git.home.luguber.info/inful/sitecfg/internal/config"
)

// Kind is the content type a route was derived from.
type Kind string

const (
	KindIndex Kind = "index"
	KindDoc   Kind = "doc"
	KindBlog  Kind = "blog"
	KindPage  Kind = "page"
	KindAsset Kind = "asset"
)

// Page is one published route.
type Page struct {
	Kind        Kind   `json:"kind"`
	Route       string `json:"route"`
	Source      string `json:"source,omitempty"`
	DocID       string `json:"docId,omitempty"`
	Title       string `json:"title,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`

	path       string // absolute file path
	contentDir string // slash path of the owning content directory, relative to the site root
}

// Markdown reports whether the page source is a markdown document.
func (p *Page) Markdown() bool {
	ext := strings.ToLower(path.Ext(p.Source))
	return ext == ".md" || ext == ".mdx"
}

// Index maps routes, doc ids and source files onto pages.
type Index struct {
	site     config.SiteIdentity
	byRoute  map[string]*Page
	byDoc    map[string]*Page
	bySource map[string]*Page
	warnings []string
}

func newIndex(site config.SiteIdentity) *Index {
	return &Index{
		site:     site,
		byRoute:  map[string]*Page{},
		byDoc:    map[string]*Page{},
		bySource: map[string]*Page{},
	}
}

// HasRoute reports whether target resolves to a published route. Targets are
// interpreted the way the navbar interprets them: relative to the site root,
// under baseUrl, with any query or fragment ignored.
func (idx *Index) HasRoute(target string) bool {
	_, ok := idx.Resolve(target)
	return ok
}

// HasDoc reports whether a document with the given id exists.
func (idx *Index) HasDoc(id string) bool {
	_, ok := idx.byDoc[id]
	return ok
}

// Doc returns the document with the given id.
func (idx *Index) Doc(id string) (*Page, bool) {
	p, ok := idx.byDoc[id]
	return p, ok
}

// Resolve returns the page target points at. External targets never resolve.
func (idx *Index) Resolve(target string) (*Page, bool) {
	if config.IsExternal(target) {
		return nil, false
	}
	p, ok := idx.byRoute[normalizeRoute(idx.site.Route(stripSuffixes(target)))]
	return p, ok
}

// BySource returns the page built from the given slash path relative to the site root.
func (idx *Index) BySource(source string) (*Page, bool) {
	p, ok := idx.bySource[path.Clean(source)]
	return p, ok
}

// Pages returns every page sorted by route.
func (idx *Index) Pages() []*Page {
	out := make([]*Page, 0, len(idx.byRoute))
	for _, p := range idx.byRoute {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Route < out[j].Route })
	return out
}

// Len returns the number of routes.
func (idx *Index) Len() int { return len(idx.byRoute) }

// Warnings returns non-fatal problems found while building the index.
func (idx *Index) Warnings() []string { return idx.warnings }

// add registers p. Content replaces a generated index route; otherwise a
// route already taken keeps its first page.
func (idx *Index) add(p *Page) bool {
	p.Route = normalizeRoute(p.Route)
	if prev, exists := idx.byRoute[p.Route]; exists {
		switch {
		case p.Kind == KindIndex:
			return false
		case prev.Kind != KindIndex:
			idx.warnings = append(idx.warnings, "duplicate route "+p.Route+": "+p.Source+" shadowed by "+prev.Source)
			return false
		}
	}
	idx.byRoute[p.Route] = p
	if p.Source != "" {
		idx.bySource[p.Source] = p
	}
	if p.DocID != "" {
		idx.byDoc[p.DocID] = p
	}
	return true
}

func stripSuffixes(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if unescaped, err := url.PathUnescape(target); err == nil {
		target = unescaped
	}
	return target
}

// normalizeRoute cleans a route and drops its trailing slash, except for "/".
func normalizeRoute(r string) string {
	if r == "" {
		return "/"
	}
	if !strings.HasPrefix(r, "/") {
		r = "/" + r
	}
	return path.Clean(r)
}

func joinRoute(parts ...string) string {
	return normalizeRoute(path.Join(append([]string{"/"}, parts...)...))
}
