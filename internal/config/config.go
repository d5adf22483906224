package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// requiredFields are checked in order; the first absent one is reported.
var requiredFields = []string{"title", "url", "baseUrl"}

// Option tunes Parse and Load.
type Option func(*options)

type options struct {
	expandEnv bool
	strict    bool
	envFiles  bool
	envDir    string
	logger    *slog.Logger
}

func newOptions(opts []Option) *options {
	o := &options{expandEnv: true, envFiles: true, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithoutEnvExpansion leaves ${VAR} references in the source untouched.
func WithoutEnvExpansion() Option { return func(o *options) { o.expandEnv = false } }

// WithStrict rejects keys that do not map onto a configuration field.
func WithStrict(strict bool) Option { return func(o *options) { o.strict = strict } }

// WithoutEnvFiles skips loading .env files in Load.
func WithoutEnvFiles() Option { return func(o *options) { o.envFiles = false } }

// WithEnvDir sets the directory searched for .env files. Defaults to the
// directory of the configuration file.
func WithEnvDir(dir string) Option { return func(o *options) { o.envDir = dir } }

// WithLogger sets the logger receiving normalization and validation warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load reads the configuration file at path and parses it.
func Load(path string, opts ...Option) (*Config, error) {
	newOptions(opts).loadEnv(path)

	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data, opts...)
	if err != nil {
		return nil, withConfigPath(err, path)
	}
	return cfg, nil
}

// LoadOverlay reads a partial configuration file for use as Merge
// overrides. Env files are loaded as in Load.
func LoadOverlay(path string, opts ...Option) (*Config, error) {
	newOptions(opts).loadEnv(path)
	data, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseOverlay(data, opts...)
	if err != nil {
		return nil, withConfigPath(err, path)
	}
	return cfg, nil
}

// loadEnv loads the env files next to the configuration at path, or in the
// WithEnvDir directory. Process environment values are never overwritten.
func (o *options) loadEnv(path string) {
	if !o.envFiles {
		return
	}
	dir := o.envDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if loaded, err := loadEnvFiles(dir); err != nil {
		o.logger.Warn("Failed to load env file", logfields.Path(dir), logfields.Error(err))
	} else if len(loaded) > 0 {
		o.logger.Debug("Loaded environment files", slog.Any("files", loaded))
	}
}

// LoadLayered merges the raw documents at paths in order, later files
// overriding earlier ones, and parses the result. Maps merge recursively;
// lists and scalars are replaced, so an overlay can clear a list with [].
func LoadLayered(paths []string, opts ...Option) (*Config, error) {
	if len(paths) == 0 {
		return nil, ferrors.ConfigError("no configuration files given").Build()
	}
	if len(paths) == 1 {
		return Load(paths[0], opts...)
	}
	o := newOptions(opts)
	o.loadEnv(paths[0])

	merged := map[string]any{}
	for _, p := range paths {
		data, err := readConfigFile(p)
		if err != nil {
			return nil, err
		}
		if o.expandEnv {
			data = expandEnv(data)
		}
		var layer map[string]any
		if err := yaml.Unmarshal(data, &layer); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").
				Fatal().UserAction().WithContext(ferrors.ContextSource, p).Build()
		}
		mergeDocuments(merged, layer)
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to re-encode merged configuration").Build()
	}
	// Expansion already happened per layer.
	cfg, err := Parse(data, append(opts, WithoutEnvExpansion())...)
	if err != nil {
		return nil, withConfigPath(err, strings.Join(paths, ","))
	}
	return cfg, nil
}

// Parse decodes, normalizes, defaults and validates a YAML (or JSON) source.
func Parse(data []byte, opts ...Option) (*Config, error) {
	o := newOptions(opts)
	if o.expandEnv {
		data = expandEnv(data)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").
			Fatal().UserAction().Build()
	}
	if err := checkRequired(&root); err != nil {
		return nil, err
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
		o.logger.Warn("config normalization", slog.String("warning", w))
	}

	if err := applyDefaults(cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to apply defaults").Build()
	}

	warnings, err := validateConfig(cfg)
	for _, w := range warnings {
		o.logger.Warn("config validation", slog.String("warning", w))
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode maps the YAML source onto Config without further processing.
func decode(data []byte, o *options) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(o.strict)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		var navErr *NavItemError
		if errors.As(err, &navErr) {
			return nil, ferrors.MalformedNavItem("themeConfig.navbar.items"+navErr.Path, navErr.Reason).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to decode configuration").
			Fatal().UserAction().Build()
	}
	return &cfg, nil
}

// checkRequired reports the first required field that is absent, null or blank.
func checkRequired(root *yaml.Node) error {
	if root.Kind == 0 || (root.Kind == yaml.DocumentNode && len(root.Content) == 0) {
		return ferrors.MissingField(requiredFields[0]).Build()
	}
	doc := root
	if doc.Kind == yaml.DocumentNode {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		if doc.ShortTag() == "!!null" {
			return ferrors.MissingField(requiredFields[0]).Build()
		}
		return ferrors.ConfigError("configuration root must be a mapping").Build()
	}
	for _, key := range requiredFields {
		v := mappingValue(doc, key)
		if v == nil || v.ShortTag() == "!!null" || (v.Kind == yaml.ScalarNode && strings.TrimSpace(v.Value) == "") {
			return ferrors.MissingField(key).Build()
		}
	}
	return nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func readConfigFile(path string) ([]byte, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ferrors.ConfigError("configuration file not found").
			WithContext(ferrors.ContextSource, path).Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read config file").
			WithContext(ferrors.ContextSource, path).Build()
	}
	return data, nil
}

func withConfigPath(err error, path string) error {
	if ce, ok := ferrors.AsClassified(err); ok {
		return ce.WithContext(ferrors.ContextSource, path)
	}
	return fmt.Errorf("%s: %w", path, err)
}

// mergeDocuments overlays src onto dst. Nested maps merge; any other value
// (lists included) replaces the destination value.
func mergeDocuments(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeDocuments(dm, sm)
				continue
			}
			nm := map[string]any{}
			mergeDocuments(nm, sm)
			dst[k] = nm
			continue
		}
		dst[k] = v
	}
}

// Init writes an example configuration to path. seed may be nil, in which
// case Default() is used.
func Init(path string, force bool, seed *Config) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext(ferrors.ContextSource, path).Build()
	}
	cfg := seed
	if cfg == nil {
		cfg = Default()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create config directory").
				WithContext(ferrors.ContextSource, dir).Build()
		}
	}
	return WriteFile(path, cfg)
}
