package routes

import (
	"errors"
	"log/slog"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/frontmatter"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/markdown"
)

// Broken is one link that did not resolve.
type Broken struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Line   int    `json:"line,omitempty"`
}

// Report summarizes one link check.
type Report struct {
	Policy  config.BrokenLinkPolicy `json:"policy"`
	Checked int                     `json:"checked"`
	Broken  []Broken                `json:"broken,omitempty"`
}

// CheckLinks resolves every internal navbar and footer target against idx
// and applies cfg.OnBrokenLinks to the ones that do not resolve. Under the
// throw policy the returned error joins one BrokenLink error per target, so
// callers must not produce output. External targets are not checked.
func CheckLinks(cfg *config.Config, idx *Index, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Report{Policy: cfg.OnBrokenLinks}
	for _, l := range config.ResolveLinks(cfg) {
		if l.Kind == config.LinkExternal {
			continue
		}
		r.Checked++
		if l.DocID != "" {
			if !idx.HasDoc(l.DocID) {
				r.Broken = append(r.Broken, Broken{Source: l.Source, Target: "doc:" + l.DocID})
			}
			continue
		}
		if !idx.HasRoute(l.Target) {
			r.Broken = append(r.Broken, Broken{Source: l.Source, Target: l.Target})
		}
	}
	return r, applyPolicy(r, "link", logger)
}

// CheckMarkdownLinks inspects the markdown sources of docs and blog posts
// for links to other markdown files and for local images, and applies
// cfg.OnBrokenMarkdownLinks to the ones that do not exist. Route links
// inside markdown are left to the generator.
func CheckMarkdownLinks(cfg *config.Config, idx *Index, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Report{Policy: cfg.OnBrokenMarkdownLinks}
	for _, p := range idx.Pages() {
		if (p.Kind != KindDoc && p.Kind != KindBlog) || !p.Markdown() {
			continue
		}
		broken, checked, err := checkPage(idx, p)
		if err != nil {
			return nil, err
		}
		r.Checked += checked
		r.Broken = append(r.Broken, broken...)
	}
	return r, applyPolicy(r, "markdown link", logger)
}

func checkPage(idx *Index, p *Page) ([]Broken, int, error) {
	content, err := os.ReadFile(p.path)
	if err != nil {
		return nil, 0, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read content file").
			WithContext(ferrors.ContextSource, p.Source).Build()
	}
	_, body, _, err := frontmatter.Split(content)
	if err != nil {
		return nil, 0, ferrors.WrapError(err, ferrors.CategoryValidation, "invalid frontmatter").
			WithContext(ferrors.ContextSource, p.Source).Build()
	}
	offset := strings.Count(string(content[:len(content)-len(body)]), "\n")

	links, err := markdown.ExtractLinks(body, markdown.Options{})
	if err != nil {
		return nil, 0, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to parse markdown").
			WithContext(ferrors.ContextSource, p.Source).Build()
	}

	var broken []Broken
	checked := 0
	for _, l := range links {
		if l.Kind == markdown.LinkKindAuto {
			continue
		}
		dest, ok := localDestination(l.Destination)
		if !ok {
			continue
		}
		line := l.Line
		if line > 0 {
			line += offset
		}
		switch {
		case markdownExts[strings.ToLower(path.Ext(dest))]:
			checked++
			if _, found := idx.BySource(resolveSource(p, dest)); !found {
				broken = append(broken, Broken{Source: p.Source, Target: l.Destination, Line: line})
			}
		case l.Kind == markdown.LinkKindImage:
			checked++
			if !imageExists(idx, p, dest) {
				broken = append(broken, Broken{Source: p.Source, Target: l.Destination, Line: line})
			}
		}
	}
	return broken, checked, nil
}

// localDestination strips query and fragment and reports whether dest refers
// to a file on this site.
func localDestination(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return "", false
	}
	if u, err := url.Parse(dest); err != nil || u.Scheme != "" {
		return "", false
	}
	dest = stripSuffixes(dest)
	return dest, dest != ""
}

// resolveSource maps a markdown file reference onto a source path relative
// to the site root. Absolute references start at the page's content directory.
func resolveSource(p *Page, dest string) string {
	if strings.HasPrefix(dest, "/") {
		return path.Join(p.contentDir, dest)
	}
	return path.Join(path.Dir(p.Source), dest)
}

func imageExists(idx *Index, p *Page, dest string) bool {
	if strings.HasPrefix(dest, "/") {
		return idx.HasRoute(dest)
	}
	_, err := os.Stat(filepath.Join(filepath.Dir(p.path), filepath.FromSlash(dest)))
	return err == nil
}

// applyPolicy reports r.Broken according to r.Policy.
func applyPolicy(r *Report, what string, logger *slog.Logger) error {
	if len(r.Broken) == 0 {
		return nil
	}
	switch r.Policy {
	case config.PolicyIgnore:
		return nil
	case config.PolicyLog:
		for _, b := range r.Broken {
			logger.Info("Broken "+what, brokenAttrs(b)...)
		}
		return nil
	case config.PolicyWarn:
		for _, b := range r.Broken {
			logger.Warn("Broken "+what, brokenAttrs(b)...)
		}
		return nil
	}
	errs := make([]error, 0, len(r.Broken))
	for _, b := range r.Broken {
		eb := ferrors.BrokenLink(b.Source, b.Target)
		if b.Line > 0 {
			eb = eb.WithContext("line", b.Line)
		}
		errs = append(errs, eb.Build())
	}
	return errors.Join(errs...)
}

func brokenAttrs(b Broken) []any {
	attrs := []any{logfields.Source(b.Source), logfields.Target(b.Target)}
	if b.Line > 0 {
		attrs = append(attrs, slog.Int("line", b.Line))
	}
	return attrs
}
