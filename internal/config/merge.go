package config

import (
	"dario.cat/mergo"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// Merge overlays overrides onto defaults and returns a new configuration.
// Non-zero override leaves replace base leaves; zero leaves (empty strings,
// false, nil or empty lists) keep the base value. Lists such as nav items,
// footer groups, presets, plugins and stylesheets are replaced wholesale.
// Neither input is modified.
//
// A typed overlay cannot switch a boolean back to false; use LoadLayered
// for document-level overlays where that matters.
func Merge(defaults, overrides *Config) (*Config, error) {
	if defaults == nil {
		defaults = &Config{}
	}
	out := defaults.Clone()
	if overrides == nil {
		return out, nil
	}
	ov := overrides.Clone()
	if err := mergo.Merge(out, ov, mergo.WithOverride); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to merge configuration").Build()
	}
	return out, nil
}

// ParseOverlay decodes a partial configuration for use as Merge overrides.
// Required fields, defaults and validation are skipped; enumerations are
// still normalized.
func ParseOverlay(data []byte, opts ...Option) (*Config, error) {
	o := newOptions(opts)
	// An empty overlay is the identity.
	if len(data) == 0 {
		return &Config{}, nil
	}
	if o.expandEnv {
		data = expandEnv(data)
	}
	cfg, err := decode(data, o)
	if err != nil {
		return nil, err
	}
	nres, err := NormalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	for _, w := range nres.Warnings {
		o.logger.Warn("overlay normalization", "warning", w)
	}
	return cfg, nil
}

// Finalize applies defaults to a merged configuration and validates it.
func Finalize(cfg *Config) (*Config, error) {
	out := cfg.Clone()
	if _, err := NormalizeConfig(out); err != nil {
		return nil, err
	}
	if err := applyDefaults(out); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to apply defaults").Build()
	}
	if err := ValidateConfig(out); err != nil {
		return nil, err
	}
	return out, nil
}
