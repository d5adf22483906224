package config

import (
	"git.home.luguber.info/inful/sitecfg/internal/foundation/normalization"
)

// BrokenLinkPolicy selects how unresolvable internal links are reported.
type BrokenLinkPolicy string

const (
	PolicyIgnore BrokenLinkPolicy = "ignore"
	PolicyLog    BrokenLinkPolicy = "log"
	PolicyWarn   BrokenLinkPolicy = "warn"
	PolicyThrow  BrokenLinkPolicy = "throw"
)

var brokenLinkPolicyNormalizer = normalization.NewNormalizer(map[string]BrokenLinkPolicy{
	"ignore": PolicyIgnore,
	"log":    PolicyLog,
	"warn":   PolicyWarn,
	"throw":  PolicyThrow,
}, PolicyThrow)

// NormalizeBrokenLinkPolicy returns the canonical policy or "" when raw is unknown.
func NormalizeBrokenLinkPolicy(raw string) BrokenLinkPolicy {
	p, _ := brokenLinkPolicyNormalizer.Lookup(raw)
	return p
}

// ColorMode is the initial site color mode.
type ColorMode string

const (
	ColorModeLight ColorMode = "light"
	ColorModeDark  ColorMode = "dark"
	ColorModeAuto  ColorMode = "auto"
)

var colorModeNormalizer = normalization.NewNormalizer(map[string]ColorMode{
	"light":  ColorModeLight,
	"dark":   ColorModeDark,
	"auto":   ColorModeAuto,
	"system": ColorModeAuto,
}, ColorModeDark)

// NormalizeColorMode returns the canonical color mode or "" when raw is unknown.
func NormalizeColorMode(raw string) ColorMode {
	m, _ := colorModeNormalizer.Lookup(raw)
	return m
}

// Position places a navbar item on the left or right side.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

var positionNormalizer = normalization.NewNormalizer(map[string]Position{
	"left":  PositionLeft,
	"right": PositionRight,
}, PositionLeft)

// NormalizePosition returns the canonical position or "" when raw is unknown.
func NormalizePosition(raw string) Position {
	p, _ := positionNormalizer.Lookup(raw)
	return p
}

// FooterStyle is the footer color scheme.
type FooterStyle string

const (
	FooterLight FooterStyle = "light"
	FooterDark  FooterStyle = "dark"
)

var footerStyleNormalizer = normalization.NewNormalizer(map[string]FooterStyle{
	"light": FooterLight,
	"dark":  FooterDark,
}, FooterLight)

// NormalizeFooterStyle returns the canonical footer style or "" when raw is unknown.
func NormalizeFooterStyle(raw string) FooterStyle {
	s, _ := footerStyleNormalizer.Lookup(raw)
	return s
}

// crossOriginNormalizer covers the CORS settings attribute values.
var crossOriginNormalizer = normalization.NewNormalizer(map[string]string{
	"anonymous":       "anonymous",
	"use-credentials": "use-credentials",
}, "anonymous")
