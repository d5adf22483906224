// Package homepage composes the site landing page: document head with the
// configured stylesheets, navbar, responsive hero banner, blurb header,
// feature section and footer.
package homepage

import (
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/routes"
)

// Options controls Render. Zero values select the defaults.
type Options struct {
	// Assets resolves banner and feature images. Defaults to StaticResolver.
	Assets AssetResolver
	// Features renders the feature block. Defaults to MarkdownFeatures.
	Features FeatureSection
	// Stylesheets replaces cfg.Stylesheets when non-nil, e.g. with only the
	// sheets that passed integrity verification.
	Stylesheets []config.Stylesheet
	// Index resolves doc links to their routes. Without it doc links point
	// at <docs routeBasePath>/<id>.
	Index *routes.Index
	// Now fixes the {year} substituted into the copyright.
	Now time.Time
}

type pageView struct {
	Lang        string
	Theme       string
	Title       string
	Description string
	Favicon     string
	Stylesheets []config.Stylesheet
	Brand       brandView
	NavLeft     []navView
	NavRight    []navView
	Banner      *bannerView
	Blurb       []string
	Features    template.HTML
	FooterStyle string
	Footer      []footerGroupView
	Copyright   string
}

type brandView struct {
	Title   string
	Href    string
	LogoSrc string
	LogoAlt string
}

type navView struct {
	Label    string
	URL      string
	External bool
	Children []navView
}

type bannerView struct {
	Wide   string
	Narrow string
	Alt    string
	Media  string
}

type footerGroupView struct {
	Title string
	Links []navView
}

// Render writes the landing page for cfg to w.
func Render(w io.Writer, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return ferrors.InternalError("config nil").Build()
	}
	view, err := buildView(cfg, opts)
	if err != nil {
		return err
	}
	if err := pageTemplate.Execute(w, view); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to render homepage").Build()
	}
	return nil
}

func buildView(cfg *config.Config, opts Options) (*pageView, error) {
	assets := opts.Assets
	if assets == nil {
		assets = StaticResolver{Site: cfg.SiteIdentity}
	}
	features := opts.Features
	if features == nil {
		features = MarkdownFeatures{Assets: assets}
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	sheets := cfg.Stylesheets
	if opts.Stylesheets != nil {
		sheets = opts.Stylesheets
	}

	hp := cfg.Homepage
	v := &pageView{
		Lang:        "en",
		Title:       cfg.Title,
		Description: hp.Description,
		Stylesheets: sheets,
		Blurb:       hp.Blurb,
		FooterStyle: string(cfg.ThemeConfig.Footer.Style),
		Copyright:   strings.ReplaceAll(cfg.ThemeConfig.Footer.Copyright, "{year}", strconv.Itoa(now.Year())),
	}
	if hp.Headline != "" {
		v.Title = cfg.Title + " : " + hp.Headline
	}
	if hp.Description == "" {
		v.Description = cfg.Tagline
	}
	if mode := cfg.ThemeConfig.ColorMode.DefaultMode; mode != config.ColorModeAuto {
		v.Theme = string(mode)
	}

	var err error
	if cfg.Favicon != "" {
		if v.Favicon, err = assets.Resolve(cfg.Favicon); err != nil {
			return nil, err
		}
	}

	nb := cfg.ThemeConfig.Navbar
	v.Brand = brandView{Title: nb.Title, Href: cfg.Route("/")}
	if nb.Logo != nil {
		if v.Brand.LogoSrc, err = assets.Resolve(nb.Logo.Src); err != nil {
			return nil, err
		}
		v.Brand.LogoAlt = nb.Logo.Alt
		if nb.Logo.Href != "" {
			v.Brand.Href = linkURL(cfg, nb.Logo.Href)
		}
	}
	for _, item := range nb.Items {
		nv := navItemView(cfg, opts.Index, item)
		if item.ItemPosition() == config.PositionRight {
			v.NavRight = append(v.NavRight, nv)
		} else {
			v.NavLeft = append(v.NavLeft, nv)
		}
	}

	if b := hp.Banner; b.Wide != "" {
		bv := &bannerView{Alt: b.Alt}
		if bv.Wide, err = assets.Resolve(b.Wide); err != nil {
			return nil, err
		}
		if b.Narrow != "" {
			if bv.Narrow, err = assets.Resolve(b.Narrow); err != nil {
				return nil, err
			}
			bv.Media = MediaQuery(b.Breakpoint)
		}
		v.Banner = bv
	}

	if v.Features, err = features.RenderFeatures(hp.Features); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to render features").Build()
	}

	for _, g := range cfg.ThemeConfig.Footer.Links {
		gv := footerGroupView{Title: g.Title}
		for _, l := range g.Items {
			gv.Links = append(gv.Links, navView{Label: l.Label, URL: linkURL(cfg, l.Target()), External: config.IsExternal(l.Target())})
		}
		v.Footer = append(v.Footer, gv)
	}
	return v, nil
}

// MediaQuery returns the viewport condition under which the narrow banner is served.
func MediaQuery(breakpoint int) string {
	if breakpoint <= 0 {
		breakpoint = config.DefaultBreakpoint
	}
	return "(max-width: " + strconv.Itoa(breakpoint) + "px)"
}

func navItemView(cfg *config.Config, idx *routes.Index, item config.NavItem) navView {
	switch it := item.(type) {
	case *config.Link:
		return navView{Label: it.Label, URL: linkURL(cfg, it.Target()), External: config.IsExternal(it.Target())}
	case *config.DocLink:
		return navView{Label: it.Label, URL: docURL(cfg, idx, it.DocID)}
	case *config.Dropdown:
		nv := navView{Label: it.Label, URL: "#"}
		for _, child := range it.Items {
			nv.Children = append(nv.Children, navItemView(cfg, idx, child))
		}
		return nv
	}
	return navView{Label: item.ItemLabel()}
}

func linkURL(cfg *config.Config, target string) string {
	return cfg.Route(target)
}

func docURL(cfg *config.Config, idx *routes.Index, id string) string {
	if idx != nil {
		if p, ok := idx.Doc(id); ok {
			return p.Route
		}
	}
	base := "docs"
	for _, p := range cfg.Presets {
		if p.Docs != nil && p.Docs.RouteBasePath != "" {
			base = p.Docs.RouteBasePath
			break
		}
	}
	return cfg.Route(strings.TrimSuffix(base, "/") + "/" + id)
}
