package config

import (
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// NormalizationResult captures adjustments and warnings from the normalization pass.
type NormalizationResult struct{ Warnings []string }

func (r *NormalizationResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// NormalizeConfig canonicalizes enumerations, trims identity strings and
// collapses empty lists to nil before defaults are applied. It mutates c in
// place. Unknown enumeration values are rejected.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, ferrors.InternalError("config nil").Build()
	}
	res := &NormalizationResult{}
	normalizeIdentity(&c.SiteIdentity, res)

	var err error
	if c.OnBrokenLinks, err = normalizeEnum("onBrokenLinks", c.OnBrokenLinks, brokenLinkPolicyNormalizer.Lookup, brokenLinkPolicyNormalizer.ValidKeys(), res); err != nil {
		return nil, err
	}
	if c.OnBrokenMarkdownLinks, err = normalizeEnum("onBrokenMarkdownLinks", c.OnBrokenMarkdownLinks, brokenLinkPolicyNormalizer.Lookup, brokenLinkPolicyNormalizer.ValidKeys(), res); err != nil {
		return nil, err
	}
	tc := &c.ThemeConfig
	if tc.ColorMode.DefaultMode, err = normalizeEnum("themeConfig.colorMode.defaultMode", tc.ColorMode.DefaultMode, colorModeNormalizer.Lookup, colorModeNormalizer.ValidKeys(), res); err != nil {
		return nil, err
	}
	if tc.Footer.Style, err = normalizeEnum("themeConfig.footer.style", tc.Footer.Style, footerStyleNormalizer.Lookup, footerStyleNormalizer.ValidKeys(), res); err != nil {
		return nil, err
	}
	for i := range c.Stylesheets {
		s := &c.Stylesheets[i]
		s.Href = strings.TrimSpace(s.Href)
		s.Integrity = strings.Join(strings.Fields(s.Integrity), " ")
		if s.CrossOrigin == "" {
			continue
		}
		if s.CrossOrigin, err = normalizeEnum(fmt.Sprintf("stylesheets[%d].crossorigin", i), s.CrossOrigin, crossOriginNormalizer.Lookup, crossOriginNormalizer.ValidKeys(), res); err != nil {
			return nil, err
		}
	}

	normalizeLists(c)
	return res, nil
}

func normalizeIdentity(s *SiteIdentity, res *NormalizationResult) {
	s.Title = strings.TrimSpace(s.Title)
	s.Tagline = strings.TrimSpace(s.Tagline)
	s.URL = strings.TrimSpace(s.URL)
	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if trimmed := strings.TrimRight(s.URL, "/"); trimmed != s.URL && strings.Contains(trimmed, "://") {
		res.warn("normalized url from '%s' to '%s'", s.URL, trimmed)
		s.URL = trimmed
	}
	if s.BaseURL != "" && !strings.HasSuffix(s.BaseURL, "/") {
		res.warn("normalized baseUrl from '%s' to '%s/'", s.BaseURL, s.BaseURL)
		s.BaseURL += "/"
	}
}

// normalizeEnum case-folds raw through lookup. Empty values pass through so
// defaults can fill them.
func normalizeEnum[T ~string](field string, raw T, lookup func(string) (T, bool), valid []string, res *NormalizationResult) (T, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return "", nil
	}
	v, ok := lookup(string(raw))
	if !ok {
		return raw, invalidValue(field, string(raw), valid)
	}
	if v != raw {
		res.warn("normalized %s from '%v' to '%v'", field, raw, v)
	}
	return v, nil
}

func invalidValue(field, value string, valid []string) error {
	msg := "invalid value"
	if len(valid) > 0 {
		msg = fmt.Sprintf("invalid value, valid options: %s", strings.Join(valid, "|"))
	}
	return ferrors.ValidationError(msg).
		WithCode(ferrors.CodeInvalidValue).
		WithField(field).
		WithContext(ferrors.ContextValue, value).
		Build()
}

// normalizeLists maps empty lists onto nil so that a serialized and reparsed
// configuration compares equal to the original.
func normalizeLists(c *Config) {
	c.Presets = nilIfEmpty(c.Presets)
	c.Stylesheets = nilIfEmpty(c.Stylesheets)
	c.ThemeConfig.Footer.Links = nilIfEmpty(c.ThemeConfig.Footer.Links)
	c.Homepage.Blurb = nilIfEmpty(c.Homepage.Blurb)
	c.Homepage.Features = nilIfEmpty(c.Homepage.Features)
	for i := range c.Presets {
		for _, co := range []*ContentOptions{c.Presets[i].Docs, c.Presets[i].Blog, c.Presets[i].Pages} {
			if co == nil {
				continue
			}
			co.RemarkPlugins = nilIfEmpty(co.RemarkPlugins)
			co.RehypePlugins = nilIfEmpty(co.RehypePlugins)
		}
	}
}

func nilIfEmpty[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return s
}
