package config

import (
	"fmt"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Documented defaults.
const (
	DefaultPresetName     = "classic"
	DefaultPrismTheme     = "github"
	DefaultPrismDark      = "dracula"
	DefaultStylesheetMIME = "text/css"
	DefaultBreakpoint     = 996
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// CompositeDefaultApplier runs every domain applier in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier creates a composite default applier with all domain appliers.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{
		appliers: []DefaultApplier{
			&PolicyDefaultApplier{},
			&ThemeDefaultApplier{},
			&NavbarDefaultApplier{},
			&PresetDefaultApplier{},
			&StylesheetDefaultApplier{},
			&HomepageDefaultApplier{},
		},
	}
}

// ApplyDefaults applies defaults for all configuration domains.
func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, applier := range c.appliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

// GetApplierByDomain returns a specific domain applier.
func (c *CompositeDefaultApplier) GetApplierByDomain(domain string) DefaultApplier {
	for _, applier := range c.appliers {
		if applier.Domain() == domain {
			return applier
		}
	}
	return nil
}

func applyDefaults(cfg *Config) error {
	return NewDefaultApplier().ApplyDefaults(cfg)
}

// PolicyDefaultApplier fills the broken link policies. The two policies stay
// independent: internal route links fail hard, markdown links only warn.
type PolicyDefaultApplier struct{}

func (p *PolicyDefaultApplier) Domain() string { return "policies" }

func (p *PolicyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.OnBrokenLinks == "" {
		cfg.OnBrokenLinks = PolicyThrow
	}
	if cfg.OnBrokenMarkdownLinks == "" {
		cfg.OnBrokenMarkdownLinks = PolicyWarn
	}
	return nil
}

// ThemeDefaultApplier fills color mode, highlight themes and footer style.
type ThemeDefaultApplier struct{}

func (t *ThemeDefaultApplier) Domain() string { return "theme" }

func (t *ThemeDefaultApplier) ApplyDefaults(cfg *Config) error {
	tc := &cfg.ThemeConfig
	if tc.ColorMode.DefaultMode == "" {
		tc.ColorMode.DefaultMode = colorModeNormalizer.Default()
	}
	if tc.Prism.Theme == "" {
		tc.Prism.Theme = DefaultPrismTheme
	}
	if tc.Prism.DarkTheme == "" {
		tc.Prism.DarkTheme = DefaultPrismDark
	}
	if tc.Footer.Style == "" {
		tc.Footer.Style = footerStyleNormalizer.Default()
	}
	return nil
}

// NavbarDefaultApplier fills the navbar title, top-level positions and
// doc link labels.
type NavbarDefaultApplier struct{}

func (n *NavbarDefaultApplier) Domain() string { return "navbar" }

func (n *NavbarDefaultApplier) ApplyDefaults(cfg *Config) error {
	nb := &cfg.ThemeConfig.Navbar
	if nb.Title == "" {
		nb.Title = cfg.Title
	}
	for _, item := range nb.Items {
		if item.ItemPosition() != "" {
			continue
		}
		switch v := item.(type) {
		case *Link:
			v.Position = PositionLeft
		case *Dropdown:
			v.Position = PositionLeft
		case *DocLink:
			v.Position = PositionLeft
		}
	}
	walkNav(nb.Items, "", func(_ string, item NavItem, _ int) {
		if d, ok := item.(*DocLink); ok && d.Label == "" {
			d.Label = LabelFromDocID(d.DocID)
		}
	})
	return nil
}

// LabelFromDocID derives a human label from a doc id: "guides/key-terminology"
// becomes "Key Terminology".
func LabelFromDocID(id string) string {
	base := path.Base(strings.TrimSpace(id))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	// Casers are stateful; one per call.
	return cases.Title(language.English).String(base)
}

// PresetDefaultApplier fills preset names and content source locations.
type PresetDefaultApplier struct{}

func (p *PresetDefaultApplier) Domain() string { return "presets" }

func (p *PresetDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.Presets {
		pr := &cfg.Presets[i]
		if pr.Name == "" {
			pr.Name = DefaultPresetName
		}
		fillContent(pr.Docs, "docs", "docs")
		fillContent(pr.Blog, "blog", "blog")
		fillContent(pr.Pages, "src/pages", "/")
	}
	return nil
}

func fillContent(co *ContentOptions, dir, route string) {
	if co == nil {
		return
	}
	if co.Path == "" {
		co.Path = dir
	}
	if co.RouteBasePath == "" {
		co.RouteBasePath = route
	}
}

// StylesheetDefaultApplier fills the stylesheet MIME type.
type StylesheetDefaultApplier struct{}

func (s *StylesheetDefaultApplier) Domain() string { return "stylesheets" }

func (s *StylesheetDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.Stylesheets {
		if cfg.Stylesheets[i].Type == "" {
			cfg.Stylesheets[i].Type = DefaultStylesheetMIME
		}
	}
	return nil
}

// HomepageDefaultApplier fills the banner breakpoint and alt text.
type HomepageDefaultApplier struct{}

func (h *HomepageDefaultApplier) Domain() string { return "homepage" }

func (h *HomepageDefaultApplier) ApplyDefaults(cfg *Config) error {
	b := &cfg.Homepage.Banner
	if b.Wide == "" && b.Narrow == "" {
		return nil
	}
	if b.Breakpoint == 0 {
		b.Breakpoint = DefaultBreakpoint
	}
	if b.Alt == "" {
		b.Alt = cfg.Title
	}
	return nil
}
