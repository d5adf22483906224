package config

// Config is the complete, validated description of a documentation site as
// handed to the external site generator. Values returned by Load/Parse are
// treated as immutable; use Clone before deriving a modified copy.
type Config struct {
	SiteIdentity `yaml:",inline"`

	OnBrokenLinks         BrokenLinkPolicy `yaml:"onBrokenLinks,omitempty"`
	OnBrokenMarkdownLinks BrokenLinkPolicy `yaml:"onBrokenMarkdownLinks,omitempty"`

	Presets     []Preset     `yaml:"presets,omitempty"`
	Stylesheets []Stylesheet `yaml:"stylesheets,omitempty"`
	ThemeConfig ThemeConfig  `yaml:"themeConfig,omitempty"`
	Homepage    Homepage     `yaml:"homepage,omitempty"`
}

// SiteIdentity names the site and anchors every generated page URL.
type SiteIdentity struct {
	Title            string `yaml:"title"`
	Tagline          string `yaml:"tagline,omitempty"`
	URL              string `yaml:"url"`
	BaseURL          string `yaml:"baseUrl"`
	Favicon          string `yaml:"favicon,omitempty"`
	OrganizationName string `yaml:"organizationName,omitempty"`
	ProjectName      string `yaml:"projectName,omitempty"`
}

// Preset bundles the content-type options of one generator preset.
// A nil content entry disables that content type.
type Preset struct {
	Name  string          `yaml:"name"`
	Docs  *ContentOptions `yaml:"docs,omitempty"`
	Blog  *ContentOptions `yaml:"blog,omitempty"`
	Pages *ContentOptions `yaml:"pages,omitempty"`
	Theme PresetTheme     `yaml:"theme,omitempty"`
}

// ContentOptions configures one content type (docs, blog or pages).
// Plugin lists are ordered: the generator applies them in sequence.
type ContentOptions struct {
	Path            string   `yaml:"path,omitempty"`
	RouteBasePath   string   `yaml:"routeBasePath,omitempty"`
	SidebarPath     string   `yaml:"sidebarPath,omitempty"`
	EditURL         string   `yaml:"editUrl,omitempty"`
	RemarkPlugins   []string `yaml:"remarkPlugins,omitempty"`
	RehypePlugins   []string `yaml:"rehypePlugins,omitempty"`
	ShowReadingTime bool     `yaml:"showReadingTime,omitempty"`
}

// PresetTheme holds theme options carried by a preset.
type PresetTheme struct {
	CustomCSS string `yaml:"customCss,omitempty"`
}

// Stylesheet is an external stylesheet reference injected into every page.
// Integrity carries subresource-integrity metadata checked by the browser.
type Stylesheet struct {
	Href        string `yaml:"href"`
	Type        string `yaml:"type,omitempty"`
	Integrity   string `yaml:"integrity,omitempty"`
	CrossOrigin string `yaml:"crossorigin,omitempty"`
}

// ThemeConfig groups presentation preferences.
type ThemeConfig struct {
	ColorMode ColorModeConfig `yaml:"colorMode,omitempty"`
	Navbar    Navbar          `yaml:"navbar,omitempty"`
	Footer    Footer          `yaml:"footer,omitempty"`
	Prism     PrismConfig     `yaml:"prism,omitempty"`
}

// ColorModeConfig selects the initial color mode.
type ColorModeConfig struct {
	DefaultMode               ColorMode `yaml:"defaultMode,omitempty"`
	DisableSwitch             bool      `yaml:"disableSwitch,omitempty"`
	RespectPrefersColorScheme bool      `yaml:"respectPrefersColorScheme,omitempty"`
}

// PrismConfig pairs the syntax highlight themes for light and dark mode.
type PrismConfig struct {
	Theme     string `yaml:"theme,omitempty"`
	DarkTheme string `yaml:"darkTheme,omitempty"`
}

// Navbar is the top navigation bar.
type Navbar struct {
	Title string   `yaml:"title,omitempty"`
	Logo  *Logo    `yaml:"logo,omitempty"`
	Items NavItems `yaml:"items,omitempty"`
}

// Logo is the navbar brand image.
type Logo struct {
	Alt     string `yaml:"alt,omitempty"`
	Src     string `yaml:"src"`
	SrcDark string `yaml:"srcDark,omitempty"`
	Href    string `yaml:"href,omitempty"`
}

// Footer is the grouped link list rendered at the bottom of every page.
// Copyright may contain {year}, substituted at render time.
type Footer struct {
	Style     FooterStyle   `yaml:"style,omitempty"`
	Links     []FooterGroup `yaml:"links,omitempty"`
	Copyright string        `yaml:"copyright,omitempty"`
}

// FooterGroup is one titled column of footer links.
type FooterGroup struct {
	Title string       `yaml:"title,omitempty"`
	Items []FooterLink `yaml:"items,omitempty"`
}

// FooterLink points either at an internal route (To) or an external URL (Href).
type FooterLink struct {
	Label string `yaml:"label"`
	To    string `yaml:"to,omitempty"`
	Href  string `yaml:"href,omitempty"`
}

// Target returns whichever of Href or To is set.
func (l FooterLink) Target() string {
	if l.Href != "" {
		return l.Href
	}
	return l.To
}

// Homepage describes the hero composition of the landing page.
type Homepage struct {
	Headline    string    `yaml:"headline,omitempty"`
	Description string    `yaml:"description,omitempty"`
	Blurb       []string  `yaml:"blurb,omitempty"`
	Banner      Banner    `yaml:"banner,omitempty"`
	Features    []Feature `yaml:"features,omitempty"`
}

// Banner holds the two responsive variants of the hero image. Narrow is
// served below Breakpoint pixels of viewport width.
type Banner struct {
	Wide       string `yaml:"wide,omitempty"`
	Narrow     string `yaml:"narrow,omitempty"`
	Alt        string `yaml:"alt,omitempty"`
	Breakpoint int    `yaml:"breakpoint,omitempty"`
}

// Feature is one entry of the feature highlight block. Description is markdown.
type Feature struct {
	Title       string `yaml:"title"`
	Image       string `yaml:"image,omitempty"`
	Description string `yaml:"description,omitempty"`
}
