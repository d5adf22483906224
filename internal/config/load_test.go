package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestLoadAttachesSourcePath(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "site.yaml", "url: https://risczero.com\nbaseUrl: /\n")

	_, err := Load(p, WithoutEnvFiles())
	requireCode(t, err, ferrors.CodeMissingField, "title")
	ce, _ := ferrors.AsClassified(err)
	src, ok := ce.Context().GetString(ferrors.ContextSource)
	require.True(t, ok)
	assert.Equal(t, p, src)
}

func TestLoadReadsEnvFile(t *testing.T) {
	const key = "SITECFG_LOAD_TEST_TITLE"
	t.Cleanup(func() { _ = os.Unsetenv(key) })

	dir := t.TempDir()
	writeFile(t, dir, ".env", key+"=RISC Zero From Env\n")
	p := writeFile(t, dir, "site.yaml", "title: ${"+key+"}\nurl: https://risczero.com\nbaseUrl: /\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "RISC Zero From Env", cfg.Title)
}

func TestLoadProcessEnvWinsOverEnvFile(t *testing.T) {
	const key = "SITECFG_LOAD_TEST_URL"
	t.Setenv(key, "https://process.example")

	dir := t.TempDir()
	writeFile(t, dir, ".env", key+"=https://file.example\n")
	p := writeFile(t, dir, "site.yaml", "title: T\nurl: ${"+key+"}\nbaseUrl: /\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://process.example", cfg.URL)
}

func TestLoadLayered(t *testing.T) {
	dir := t.TempDir()
	base := writeFile(t, dir, "base.yaml", `
title: RISC Zero
url: https://risczero.com
baseUrl: /
themeConfig:
  colorMode:
    defaultMode: dark
    disableSwitch: true
  navbar:
    title: RISC Zero
    items:
      - {label: Blog, to: /blog}
`)
	overlay := writeFile(t, dir, "staging.yaml", `
url: https://staging.risczero.com
themeConfig:
  colorMode:
    disableSwitch: false
  navbar:
    items: []
`)

	cfg, err := LoadLayered([]string{base, overlay}, WithoutEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, "RISC Zero", cfg.Title)
	assert.Equal(t, "https://staging.risczero.com", cfg.URL)
	assert.Equal(t, ColorModeDark, cfg.ThemeConfig.ColorMode.DefaultMode)
	assert.False(t, cfg.ThemeConfig.ColorMode.DisableSwitch, "document overlays can reset booleans")
	assert.Nil(t, cfg.ThemeConfig.Navbar.Items, "an empty list clears the base list")
	assert.Equal(t, "RISC Zero", cfg.ThemeConfig.Navbar.Title)
}

func TestLoadLayeredErrors(t *testing.T) {
	_, err := LoadLayered(nil)
	require.Error(t, err)

	dir := t.TempDir()
	good := writeFile(t, dir, "a.yaml", "title: T\nurl: https://example.com\nbaseUrl: /\n")
	bad := writeFile(t, dir, "b.yaml", "title: [unterminated\n")
	_, err = LoadLayered([]string{good, bad}, WithoutEnvFiles())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sitecfg.yaml")
	require.NoError(t, Init(path, false, nil))

	cfg, err := Load(path, WithoutEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	err = Init(path, false, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	seed := Default()
	seed.Title = "Seeded"
	require.NoError(t, Init(path, true, seed))
	cfg, err = Load(path, WithoutEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, "Seeded", cfg.Title)
}
