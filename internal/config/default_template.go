package config

// KaTeX stylesheet used by the math rendering plugins.
const (
	katexHref      = "https://cdn.jsdelivr.net/npm/katex@0.13.24/dist/katex.min.css"
	katexIntegrity = "sha384-odtC+0UGzzFL/6PNoE8rX/SPcQDXBJ+uRepguP4QkPCm2LBxH3FA3y+fKSiJ+AmM"
)

const riscZeroEditURL = "https://github.com/risc0/website/edit/main/"

// Default returns the base site template: the RISC Zero website with
// defaults applied. Each call returns a fresh value.
func Default() *Config {
	cfg := &Config{
		SiteIdentity: SiteIdentity{
			Title:            "RISC Zero",
			Tagline:          "Hyper-Efficient General Purpose Zero-Knowledge Computing.",
			URL:              "https://risczero.com",
			BaseURL:          "/",
			Favicon:          "img/favicon.ico",
			OrganizationName: "risc0",
			ProjectName:      "website2",
		},
		OnBrokenLinks:         PolicyThrow,
		OnBrokenMarkdownLinks: PolicyWarn,
		Presets: []Preset{{
			Name: DefaultPresetName,
			Docs: &ContentOptions{
				SidebarPath:   "./sidebars.js",
				EditURL:       riscZeroEditURL,
				RemarkPlugins: []string{"remark-math", "mdx-mermaid"},
				RehypePlugins: []string{"rehype-katex"},
			},
			Blog: &ContentOptions{
				ShowReadingTime: true,
				EditURL:         riscZeroEditURL,
			},
			Pages: &ContentOptions{},
			Theme: PresetTheme{CustomCSS: "./src/css/custom.css"},
		}},
		Stylesheets: []Stylesheet{{
			Href:        katexHref,
			Type:        DefaultStylesheetMIME,
			Integrity:   katexIntegrity,
			CrossOrigin: "anonymous",
		}},
		ThemeConfig: ThemeConfig{
			ColorMode: ColorModeConfig{DefaultMode: ColorModeDark},
			Navbar: Navbar{
				Title: "RISC Zero",
				Logo:  &Logo{Alt: "Risc0 Logo", Src: "img/logo.png"},
				Items: NavItems{
					NewDropdown("About", PositionLeft,
						NewLink("Meet the Team", "/team", ""),
					),
					NewDropdown("Get Started", PositionLeft,
						NewLink("Hello World on Rust", "https://github.com/risc0/risc0-rust-starter", ""),
						NewLink("RISC Zero Battleship", "https://github.com/risc0/battleship-example", ""),
						NewLink("Rust Crates", "https://github.com/risc0/risc0#rust-crates", ""),
						NewLink("Contribute to RISC Zero", "http://www.github.com/risc0/risc0", ""),
					),
					NewLink("Tech", "docs/technology", PositionLeft),
					NewDocLink("Terminology", "key-terminology", PositionLeft),
					NewLink("Careers", "/careers", PositionLeft),
					NewHrefLink("GitHub", "https://github.com/Risc0", PositionRight),
				},
			},
			Footer: Footer{
				Style: FooterDark,
				Links: []FooterGroup{
					{Title: "Stay Informed", Items: []FooterLink{
						{Label: "Mailing List", To: "mailing"},
						{Label: "Blog", To: "/blog"},
					}},
					{Title: "Community", Items: []FooterLink{
						{Label: "Stack Overflow", Href: "https://stackoverflow.com/questions/tagged/risczero"},
						{Label: "Discord", Href: "https://discord.gg/risczero"},
						{Label: "Twitter", Href: "https://twitter.com/risczero"},
					}},
					{Title: "Contribute", Items: []FooterLink{
						{Label: "Codebase", To: "https://github.com/risc0/"},
						{Label: "Website", Href: "https://github.com/risc0/website"},
					}},
				},
				Copyright: "Copyright © {year} Risc0, Inc. Built with Docusaurus.",
			},
			Prism: PrismConfig{Theme: DefaultPrismTheme, DarkTheme: DefaultPrismDark},
		},
		Homepage: Homepage{
			Headline:    "General-Purpose Verifiable Computing",
			Description: "Zero-Knowledge powered VM based on the RISC-V instruction set.",
			Blurb: []string{
				"The General Purpose Zero-Knowledge VM.",
				"Prove any Computation.",
				"Verify Instantly.",
			},
			Banner: Banner{
				Wide:   "img/banner.png",
				Narrow: "img/banner-small.png",
				Alt:    "Risc0 Logo",
			},
			Features: []Feature{
				{
					Title:       "General Purpose",
					Description: "Run ordinary **Rust** programs inside the zkVM; no circuits required.",
				},
				{
					Title:       "Zero Knowledge",
					Description: "Every execution produces a *receipt* that anyone can verify without re-running the program.",
				},
				{
					Title:       "Open Source",
					Description: "Built in the open under the Apache 2.0 license. See the [source on GitHub](https://github.com/risc0/risc0).",
				},
			},
		},
	}
	// The template is fixed, so a failing applier is a programming error.
	if err := applyDefaults(cfg); err != nil {
		panic("config: default template: " + err.Error())
	}
	return cfg
}
