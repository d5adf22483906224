package routes

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/frontmatter"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// DefaultStaticDir holds files served verbatim under baseUrl.
const DefaultStaticDir = "static"

var (
	markdownExts = map[string]bool{".md": true, ".mdx": true}
	pageExts     = map[string]bool{".md": true, ".mdx": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true}

	// blogDatePrefix matches "2022-08-15-hello-world".
	blogDatePrefix = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)
)

// Option tunes Build.
type Option func(*builder)

// WithLogger sets the logger receiving index warnings.
func WithLogger(l *slog.Logger) Option {
	return func(b *builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithStaticDir overrides the static asset directory, relative to root.
func WithStaticDir(dir string) Option { return func(b *builder) { b.staticDir = dir } }

// WithDrafts includes pages whose frontmatter marks them as drafts.
func WithDrafts() Option { return func(b *builder) { b.drafts = true } }

type builder struct {
	root      string
	cfg       *config.Config
	idx       *Index
	logger    *slog.Logger
	staticDir string
	drafts    bool
}

// Build walks the content directories declared by cfg's presets under root
// and indexes every route the generator will publish. The site root, and
// the docs and blog index routes of each preset that enables them, are
// always present. Missing content directories are treated as empty.
func Build(root string, cfg *config.Config, opts ...Option) (*Index, error) {
	if cfg == nil {
		return nil, ferrors.InternalError("config nil").Build()
	}
	b := &builder{
		root:      root,
		cfg:       cfg,
		idx:       newIndex(cfg.SiteIdentity),
		logger:    slog.Default(),
		staticDir: DefaultStaticDir,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.idx.add(&Page{Kind: KindIndex, Route: cfg.Route("/")})
	for _, p := range cfg.Presets {
		if p.Docs != nil {
			if err := b.docs(p.Docs); err != nil {
				return nil, err
			}
		}
		if p.Blog != nil {
			if err := b.blog(p.Blog); err != nil {
				return nil, err
			}
		}
		if p.Pages != nil {
			if err := b.pages(p.Pages); err != nil {
				return nil, err
			}
		}
	}
	if err := b.static(); err != nil {
		return nil, err
	}

	for _, w := range b.idx.warnings {
		b.logger.Warn("Route index", slog.String("warning", w))
	}
	b.logger.Debug("Route index built", logfields.Count(b.idx.Len()))
	return b.idx, nil
}

func (b *builder) docs(co *config.ContentOptions) error {
	base := b.cfg.Route(co.RouteBasePath)
	b.idx.add(&Page{Kind: KindIndex, Route: base})
	return b.walk(co.Path, markdownExts, func(rel string, doc *frontmatter.Document, p *Page) error {
		dir, name := splitRel(rel)
		id := path.Join(dir, name)
		if doc.Meta.ID != "" {
			id = path.Join(dir, doc.Meta.ID)
		}
		if prev, dup := b.idx.byDoc[id]; dup {
			return ferrors.ValidationError("duplicate doc id").
				WithCode(ferrors.CodeInvalidValue).
				WithContext(ferrors.ContextValue, id).
				WithContext(ferrors.ContextSource, p.Source).
				WithContext("other", prev.Source).Build()
		}
		p.Kind = KindDoc
		p.DocID = id
		switch slug := doc.Meta.Slug; {
		case strings.HasPrefix(slug, "/"):
			p.Route = joinRoute(base, slug)
		case slug != "":
			p.Route = joinRoute(base, dir, slug)
		case doc.Meta.ID == "" && isIndexName(name):
			p.Route = joinRoute(base, dir)
		default:
			p.Route = joinRoute(base, id)
		}
		return nil
	})
}

func (b *builder) blog(co *config.ContentOptions) error {
	base := b.cfg.Route(co.RouteBasePath)
	for _, r := range []string{base, joinRoute(base, "archive"), joinRoute(base, "tags")} {
		b.idx.add(&Page{Kind: KindIndex, Route: r})
	}
	return b.walk(co.Path, markdownExts, func(rel string, doc *frontmatter.Document, p *Page) error {
		dir, name := splitRel(rel)
		// Folder posts: 2022-08-15-launch/index.md.
		if isIndexName(name) && dir != "" {
			dir, name = path.Dir(dir), path.Base(dir)
			if dir == "." {
				dir = ""
			}
		}
		p.Kind = KindBlog
		switch slug := doc.Meta.Slug; {
		case strings.HasPrefix(slug, "/"):
			p.Route = joinRoute(base, slug)
		case slug != "":
			p.Route = joinRoute(base, slug)
		default:
			if m := blogDatePrefix.FindStringSubmatch(name); m != nil {
				name = path.Join(m[1], m[2], m[3], m[4])
			}
			p.Route = joinRoute(base, dir, name)
		}
		return nil
	})
}

func (b *builder) pages(co *config.ContentOptions) error {
	base := b.cfg.Route(co.RouteBasePath)
	return b.walk(co.Path, pageExts, func(rel string, doc *frontmatter.Document, p *Page) error {
		dir, name := splitRel(rel)
		p.Kind = KindPage
		if isIndexName(name) {
			p.Route = joinRoute(base, dir)
		} else {
			p.Route = joinRoute(base, dir, name)
		}
		if doc.Meta.Slug != "" {
			p.Route = joinRoute(base, doc.Meta.Slug)
		}
		return nil
	})
}

func (b *builder) static() error {
	dir := filepath.Join(b.root, filepath.FromSlash(b.staticDir))
	return walkFiles(dir, func(abs, rel string) error {
		b.idx.add(&Page{
			Kind:   KindAsset,
			Route:  joinRoute(b.cfg.Route("/"), rel),
			Source: path.Join(b.staticDir, rel),
			path:   abs,
		})
		return nil
	})
}

type pageFunc func(rel string, doc *frontmatter.Document, p *Page) error

// walk parses every file with an accepted extension under contentDir and
// hands it to fn for route derivation. Files and directories starting with
// "_" are partials and skipped.
func (b *builder) walk(contentDir string, exts map[string]bool, fn pageFunc) error {
	dir := filepath.Join(b.root, filepath.FromSlash(contentDir))
	return walkFiles(dir, func(abs, rel string) error {
		if !exts[strings.ToLower(path.Ext(rel))] || isPartial(rel) {
			return nil
		}
		source := path.Join(contentDir, rel)
		content, err := os.ReadFile(abs)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read content file").
				WithContext(ferrors.ContextSource, source).Build()
		}
		doc := &frontmatter.Document{}
		if markdownExts[strings.ToLower(path.Ext(rel))] {
			if doc, err = frontmatter.Parse(content); err != nil {
				return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid frontmatter").
					Fatal().UserAction().
					WithCode(ferrors.CodeInvalidValue).
					WithContext(ferrors.ContextSource, source).Build()
			}
			if doc.Meta.Draft && !b.drafts {
				b.logger.Debug("Skipping draft", logfields.Source(source))
				return nil
			}
		} else if doc.Fingerprint, err = frontmatter.Fingerprint(nil, content); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to fingerprint page").Build()
		}

		p := &Page{
			Source:      source,
			Title:       doc.Meta.Title,
			Fingerprint: doc.Fingerprint,
			path:        abs,
			contentDir:  path.Clean(contentDir),
		}
		if err := fn(rel, doc, p); err != nil {
			return err
		}
		b.idx.add(p)
		return nil
	})
}

// walkFiles calls fn for every regular file below dir with its absolute path
// and slash separated relative path. A missing dir is not an error.
func walkFiles(dir string, fn func(abs, rel string) error) error {
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		return fn(p, filepath.ToSlash(rel))
	})
	if err != nil {
		if ferrors.IsClassified(err) {
			return err
		}
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, fmt.Sprintf("failed to walk %s", dir)).
			WithContext(ferrors.ContextSource, dir).Build()
	}
	return nil
}

// splitRel returns the directory ("" at the top level) and the extensionless file name.
func splitRel(rel string) (dir, name string) {
	dir = path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	base := path.Base(rel)
	return dir, strings.TrimSuffix(base, path.Ext(base))
}

func isIndexName(name string) bool {
	return strings.EqualFold(name, "index") || strings.EqualFold(name, "readme")
}

func isPartial(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if strings.HasPrefix(seg, "_") {
			return true
		}
	}
	return false
}
