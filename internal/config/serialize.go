package config

import (
	"bytes"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// Marshal serializes cfg to YAML. Every "$" is written as "$$" so that
// Parse(Marshal(cfg)) yields an equal configuration.
func Marshal(cfg *Config) ([]byte, error) {
	if cfg == nil {
		return nil, ferrors.InternalError("config nil").Build()
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode configuration").Build()
	}
	if err := enc.Close(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode configuration").Build()
	}
	return escapeEnv(buf.Bytes()), nil
}

// WriteFile serializes cfg to path via a temp file and rename.
func WriteFile(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sitecfg-*.yaml")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create temp file").
			WithContext(ferrors.ContextSource, path).Build()
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write configuration").
			WithContext(ferrors.ContextSource, path).Build()
	}
	if err := tmp.Close(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write configuration").
			WithContext(ferrors.ContextSource, path).Build()
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to set file mode").
			WithContext(ferrors.ContextSource, path).Build()
	}
	if err := os.Rename(tmpName, path); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to replace configuration").
			WithContext(ferrors.ContextSource, path).Build()
	}
	return nil
}
