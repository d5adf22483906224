package config

import (
	"fmt"
	"net/url"
	"strings"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/integrity"
)

// EditURLPathToken marks where the page's relative path is substituted in editUrl.
const EditURLPathToken = "{path}"

// ValidateConfig validates the complete configuration and returns the first error.
func ValidateConfig(cfg *Config) error {
	_, err := validateConfig(cfg)
	return err
}

func validateConfig(cfg *Config) ([]string, error) {
	v := newConfigurationValidator(cfg)
	err := v.validate()
	return v.warnings, err
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config   *Config
	warnings []string
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

// validate runs the domain checks in order and stops at the first error.
func (cv *configurationValidator) validate() error {
	steps := []func() error{
		cv.validateIdentity,
		cv.validateNavbar,
		cv.validateFooter,
		cv.validateStylesheets,
		cv.validatePresets,
		cv.validateHomepage,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) warn(format string, args ...any) {
	cv.warnings = append(cv.warnings, fmt.Sprintf(format, args...))
}

// validateIdentity checks that url and baseUrl combine into absolute page URLs.
func (cv *configurationValidator) validateIdentity() error {
	s := cv.config.SiteIdentity
	u, err := url.Parse(s.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalidURL("url", s.URL, err)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return ferrors.InvalidURL("url", s.URL).
			WithCause(fmt.Errorf("url must not carry a path, query or fragment; use baseUrl")).Build()
	}
	if !strings.HasPrefix(s.BaseURL, "/") || strings.ContainsAny(s.BaseURL, "?# ") {
		return invalidURL("baseUrl", s.BaseURL, fmt.Errorf("baseUrl must be an absolute path"))
	}
	if _, err := url.Parse(s.PageURL("/")); err != nil {
		return invalidURL("baseUrl", s.BaseURL, err)
	}
	return nil
}

func (cv *configurationValidator) validateNavbar() error {
	nb := cv.config.ThemeConfig.Navbar
	if nb.Logo != nil && strings.TrimSpace(nb.Logo.Src) == "" {
		return ferrors.MissingField("themeConfig.navbar.logo.src").Build()
	}
	var firstErr error
	walkNav(nb.Items, "themeConfig.navbar.items", func(path string, item NavItem, depth int) {
		if firstErr != nil {
			return
		}
		switch v := item.(type) {
		case *Link:
			if strings.TrimSpace(v.Label) == "" {
				firstErr = ferrors.MissingField(path + ".label").Build()
				return
			}
			field := path + ".to"
			if v.Href != "" {
				field = path + ".href"
			}
			firstErr = validateTarget(field, v.Target())
		case *Dropdown:
			if strings.TrimSpace(v.Label) == "" {
				firstErr = ferrors.MissingField(path + ".label").Build()
				return
			}
			if len(v.Items) == 0 {
				firstErr = ferrors.MalformedNavItem(path, "dropdown requires at least one item").Build()
				return
			}
			if depth > 0 {
				cv.warn("%s: nested dropdown is not rendered by most themes", path)
			}
		case *DocLink:
			if strings.TrimSpace(v.DocID) == "" {
				firstErr = ferrors.MalformedNavItem(path, "doc item requires docId").Build()
			}
		case nil:
			firstErr = ferrors.MalformedNavItem(path, "empty item").Build()
		}
	})
	return firstErr
}

func (cv *configurationValidator) validateFooter() error {
	for gi, group := range cv.config.ThemeConfig.Footer.Links {
		if len(group.Items) == 0 {
			cv.warn("themeConfig.footer.links[%d]: group %q has no links", gi, group.Title)
		}
	}
	var firstErr error
	walkFooter(cv.config.ThemeConfig.Footer, func(path string, l FooterLink) {
		if firstErr != nil {
			return
		}
		switch {
		case strings.TrimSpace(l.Label) == "":
			firstErr = ferrors.MissingField(path + ".label").Build()
		case l.To == "" && l.Href == "":
			firstErr = ferrors.MissingField(path + ".to").Build()
		case l.To != "" && l.Href != "":
			firstErr = ferrors.ValidationError("footer link cannot have both to and href").
				WithCode(ferrors.CodeInvalidValue).WithField(path).Build()
		case l.Href != "":
			firstErr = validateTarget(path+".href", l.Href)
		default:
			firstErr = validateTarget(path+".to", l.To)
		}
	})
	return firstErr
}

// validateTarget accepts absolute http(s) URLs with a host and scheme-less
// internal routes. Other schemes are rejected since they would classify as
// internal routes.
func validateTarget(field, target string) error {
	if strings.TrimSpace(target) != target || strings.ContainsAny(target, " \t\n") {
		return invalidURL(field, target, fmt.Errorf("target contains whitespace"))
	}
	u, err := url.Parse(target)
	if err != nil {
		return invalidURL(field, target, err)
	}
	if IsExternal(target) {
		if u.Host == "" {
			return invalidURL(field, target, fmt.Errorf("external target has no host"))
		}
		return nil
	}
	if u.Scheme != "" || u.Host != "" {
		return invalidURL(field, target, fmt.Errorf("only http and https targets are external"))
	}
	return nil
}

func (cv *configurationValidator) validateStylesheets() error {
	for i, s := range cv.config.Stylesheets {
		base := fmt.Sprintf("stylesheets[%d]", i)
		if s.Href == "" {
			return ferrors.MissingField(base + ".href").Build()
		}
		if err := validateTarget(base+".href", s.Href); err != nil {
			return err
		}
		if s.Integrity == "" {
			continue
		}
		if _, err := integrity.Parse(s.Integrity); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryValidation, "invalid integrity metadata").
				Fatal().UserAction().
				WithCode(ferrors.CodeInvalidIntegrity).
				WithField(base + ".integrity").
				WithContext(ferrors.ContextValue, s.Integrity).
				Build()
		}
		if IsExternal(s.Href) && s.CrossOrigin == "" {
			return ferrors.ValidationError("crossorigin is required for cross-origin stylesheets with integrity").
				WithCode(ferrors.CodeMissingField).WithField(base + ".crossorigin").Build()
		}
	}
	return nil
}

func (cv *configurationValidator) validatePresets() error {
	seen := map[string]bool{}
	for i, p := range cv.config.Presets {
		base := fmt.Sprintf("presets[%d]", i)
		if seen[p.Name] {
			return ferrors.ValidationError("duplicate preset").
				WithCode(ferrors.CodeInvalidValue).WithField(base + ".name").
				WithContext(ferrors.ContextValue, p.Name).Build()
		}
		seen[p.Name] = true
		contents := []struct {
			name string
			opts *ContentOptions
		}{{"docs", p.Docs}, {"blog", p.Blog}, {"pages", p.Pages}}
		for _, c := range contents {
			if c.opts == nil {
				continue
			}
			if err := validateContent(base+"."+c.name, c.opts); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateContent(base string, co *ContentOptions) error {
	if co.EditURL != "" {
		u, err := url.Parse(co.EditURL)
		if err != nil || !IsExternal(co.EditURL) || u.Host == "" {
			return invalidURL(base+".editUrl", co.EditURL, err)
		}
		if !strings.Contains(co.EditURL, EditURLPathToken) && !strings.HasSuffix(co.EditURL, "/") {
			return ferrors.ValidationError("editUrl must contain " + EditURLPathToken + " or end with /").
				WithCode(ferrors.CodeInvalidValue).WithField(base + ".editUrl").
				WithContext(ferrors.ContextValue, co.EditURL).Build()
		}
	}
	if IsExternal(co.RouteBasePath) {
		return invalidURL(base+".routeBasePath", co.RouteBasePath, fmt.Errorf("routeBasePath must be a path"))
	}
	lists := []struct {
		name    string
		plugins []string
	}{{"remarkPlugins", co.RemarkPlugins}, {"rehypePlugins", co.RehypePlugins}}
	for _, l := range lists {
		seen := map[string]bool{}
		for j, plugin := range l.plugins {
			field := fmt.Sprintf("%s.%s[%d]", base, l.name, j)
			if strings.TrimSpace(plugin) == "" {
				return ferrors.MissingField(field).Build()
			}
			if seen[plugin] {
				return ferrors.ValidationError("plugin listed twice").
					WithCode(ferrors.CodeInvalidValue).WithField(field).
					WithContext(ferrors.ContextValue, plugin).Build()
			}
			seen[plugin] = true
		}
	}
	return nil
}

func (cv *configurationValidator) validateHomepage() error {
	hp := cv.config.Homepage
	if hp.Banner.Breakpoint < 0 {
		return ferrors.ValidationError("breakpoint must not be negative").
			WithCode(ferrors.CodeInvalidValue).WithField("homepage.banner.breakpoint").Build()
	}
	if hp.Banner.Narrow != "" && hp.Banner.Wide == "" {
		return ferrors.MissingField("homepage.banner.wide").Build()
	}
	for i, f := range hp.Features {
		if strings.TrimSpace(f.Title) == "" {
			return ferrors.MissingField(fmt.Sprintf("homepage.features[%d].title", i)).Build()
		}
	}
	return nil
}

func invalidURL(field, value string, cause error) error {
	b := ferrors.InvalidURL(field, value)
	if cause != nil {
		b = b.WithCause(cause)
	}
	return b.Build()
}

// EditURLFor expands an editUrl template for a page path relative to the
// content directory.
func EditURLFor(template, relPath string) string {
	relPath = strings.TrimPrefix(relPath, "/")
	if strings.Contains(template, EditURLPathToken) {
		return strings.ReplaceAll(template, EditURLPathToken, relPath)
	}
	return template + relPath
}
