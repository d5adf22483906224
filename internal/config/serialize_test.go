package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMarshalRoundTripDefault(t *testing.T) {
	d := Default()
	data, err := Marshal(d)
	require.NoError(t, err)

	back, err := parse(t, string(data))
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestMarshalRoundTripHandWritten(t *testing.T) {
	cfg, err := parse(t, `
title: RISC Zero
tagline: Proofs from $$5 per run
url: https://risczero.com
baseUrl: /docs/
themeConfig:
  navbar:
    items:
      - type: dropdown
        label: Learn
        items:
          - label: Guides
            items:
              - label: Quickstart
                to: /quickstart
          - type: doc
            docId: key-terminology
      - label: Price
        href: https://risczero.com/pricing?from=$USD
        position: right
  footer:
    copyright: "Copyright © {year} RISC Zero, Inc. $HOME"
    links:
      - title: Community
        links:
          - label: Discord
            href: https://discord.gg/risczero
      - title: Empty
homepage:
  features:
    - title: Shell
      description: "Run ` + "`echo $$PATH`" + ` to check."
`)
	require.NoError(t, err)
	assert.Equal(t, "Proofs from $5 per run", cfg.Tagline)
	assert.Equal(t, "Copyright © {year} RISC Zero, Inc. $HOME", cfg.ThemeConfig.Footer.Copyright)
	require.Len(t, cfg.ThemeConfig.Footer.Links, 2)

	data, err := Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "$$5")

	back, err := parse(t, string(data))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestMarshalNavItemShape(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	var doc struct {
		ThemeConfig struct {
			Navbar struct {
				Items []map[string]any `yaml:"items"`
			} `yaml:"navbar"`
		} `yaml:"themeConfig"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	items := doc.ThemeConfig.Navbar.Items
	require.Len(t, items, 6)
	assert.Equal(t, "dropdown", items[0]["type"])
	assert.Equal(t, "doc", items[3]["type"])
	assert.NotContains(t, items[2], "type", "plain links carry no type")
	assert.Equal(t, "https://github.com/Risc0", items[5]["href"])
}

func TestSnapshotStable(t *testing.T) {
	a, b := Default(), Default()
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Len(t, a.Snapshot(), 64)

	b.Tagline = "Something else"
	assert.NotEqual(t, a.Snapshot(), b.Snapshot())

	var nilCfg *Config
	assert.Empty(t, nilCfg.Snapshot())
}

func TestWriteFileAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, WriteFile(path, Default()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	cfg, err := Load(path, WithoutEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}
