package routes

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/testutil/testutils"
)

const introDoc = `---
title: Intro
---
# Intro

See [terms](key-terminology.md) and the [guide](./guides/index.md#top).

Also [renamed](/guides/custom.md) and [missing](nope.md).

![arch](img/arch.png)

![logo](/img/logo.png)

![gone](/img/gone.png)

[External](https://github.com/risc0/risc0) and [route](/blog).
`

func siteTree() map[string]string {
	return map[string]string{
		"docs/intro.md":                     introDoc,
		"docs/img/arch.png":                 "png",
		"docs/key-terminology.md":           "---\ntitle: Key Terminology\n---\n# Terms\n",
		"docs/technology.md":                "# Technology\n",
		"docs/guides/index.md":              "# Guides\n",
		"docs/guides/custom.md":             "---\nid: renamed\n---\n# Custom\n",
		"docs/slugged.md":                   "---\nslug: /zk\n---\n# ZK\n",
		"docs/_partial.md":                  "partial\n",
		"docs/draft.md":                     "---\ndraft: true\n---\n# Draft\n",
		"blog/2022-08-15-hello-world.md":    "# Hello\n",
		"blog/2023-01-02-launch/index.md":   "# Launch\n",
		"blog/custom.md":                    "---\nslug: announcing\n---\n# News\n",
		"src/pages/index.js":                "export default function Home() {}\n",
		"src/pages/team.md":                 "# Team\n",
		"src/pages/careers/index.tsx":       "export default function Careers() {}\n",
		"src/pages/mailing.js":              "export default function Mailing() {}\n",
		"src/pages/_components/Feature.tsx": "export default function Feature() {}\n",
		"static/img/logo.png":               "png",
		"static/.nojekyll":                  "",
	}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	return testutils.WriteTree(t, files)
}

func testLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestBuildIndexesContent(t *testing.T) {
	root := writeTree(t, siteTree())
	logger, _ := testLogger()
	idx, err := Build(root, config.Default(), WithLogger(logger))
	require.NoError(t, err)

	for _, route := range []string{
		"/",
		"/docs",
		"/docs/intro",
		"/docs/key-terminology",
		"/docs/technology",
		"/docs/guides",
		"/docs/guides/renamed",
		"/docs/zk",
		"/blog",
		"/blog/archive",
		"/blog/tags",
		"/blog/2022/08/15/hello-world",
		"/blog/2023/01/02/launch",
		"/blog/announcing",
		"/team",
		"/careers",
		"/mailing",
		"/img/logo.png",
	} {
		assert.True(t, idx.HasRoute(route), route)
	}
	for _, route := range []string{"/docs/draft", "/docs/_partial", "/docs/slugged", "/_components/Feature", "/.nojekyll"} {
		assert.False(t, idx.HasRoute(route), route)
	}

	assert.True(t, idx.HasDoc("key-terminology"))
	assert.True(t, idx.HasDoc("guides/index"))
	assert.True(t, idx.HasDoc("guides/renamed"))
	assert.False(t, idx.HasDoc("guides/custom"))

	home, ok := idx.Resolve("/")
	require.True(t, ok)
	assert.Equal(t, KindPage, home.Kind, "a pages index replaces the generated root")

	doc, ok := idx.Doc("key-terminology")
	require.True(t, ok)
	assert.Equal(t, "Key Terminology", doc.Title)
	assert.Equal(t, "docs/key-terminology.md", doc.Source)
	assert.NotEmpty(t, doc.Fingerprint)
}

func TestResolveNormalizesTargets(t *testing.T) {
	root := writeTree(t, siteTree())
	idx, err := Build(root, config.Default())
	require.NoError(t, err)

	for _, target := range []string{"docs/technology", "/docs/technology/", "/docs/technology#install", "/docs/technology?x=1", "mailing"} {
		assert.True(t, idx.HasRoute(target), target)
	}
	assert.False(t, idx.HasRoute("https://risczero.com/docs/technology"))
}

func TestBuildUnderBaseURL(t *testing.T) {
	root := writeTree(t, siteTree())
	cfg := config.Default()
	cfg.BaseURL = "/website/"
	idx, err := Build(root, cfg)
	require.NoError(t, err)

	assert.True(t, idx.HasRoute("/website/docs/intro"))
	assert.True(t, idx.HasRoute("/docs/intro"), "root relative targets are placed under baseUrl")
	assert.True(t, idx.HasRoute("/website/img/logo.png"))
	p, ok := idx.Resolve("/team")
	require.True(t, ok)
	assert.Equal(t, "/website/team", p.Route)
}

func TestBuildMissingDirectories(t *testing.T) {
	idx, err := Build(t.TempDir(), config.Default())
	require.NoError(t, err)
	assert.True(t, idx.HasRoute("/"))
	assert.True(t, idx.HasRoute("/docs"))
	assert.True(t, idx.HasRoute("/blog"))
	assert.False(t, idx.HasRoute("/team"))
}

func TestBuildDrafts(t *testing.T) {
	root := writeTree(t, siteTree())
	idx, err := Build(root, config.Default(), WithDrafts())
	require.NoError(t, err)
	assert.True(t, idx.HasRoute("/docs/draft"))
}

func TestBuildDuplicateDocID(t *testing.T) {
	root := writeTree(t, map[string]string{
		"docs/a.md": "---\nid: same\n---\n",
		"docs/b.md": "---\nid: same\n---\n",
	})
	_, err := Build(root, config.Default())
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeInvalidValue))
}

func TestBuildDuplicateRouteWarns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/pages/team.md":       "# Team\n",
		"src/pages/team/index.js": "export default 1\n",
	})
	logger, buf := testLogger()
	idx, err := Build(root, config.Default(), WithLogger(logger))
	require.NoError(t, err)
	require.Len(t, idx.Warnings(), 1)
	assert.Contains(t, buf.String(), "duplicate route /team")
}

func TestBuildInvalidFrontmatter(t *testing.T) {
	root := writeTree(t, map[string]string{"docs/bad.md": "---\nid: [x\n---\n"})
	_, err := Build(root, config.Default())
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
}

func TestCheckLinksAllResolve(t *testing.T) {
	root := writeTree(t, siteTree())
	cfg := config.Default()
	idx, err := Build(root, cfg)
	require.NoError(t, err)

	report, err := CheckLinks(cfg, idx, nil)
	require.NoError(t, err)
	assert.Empty(t, report.Broken)
	assert.Equal(t, 6, report.Checked)
}

func TestCheckLinksThrow(t *testing.T) {
	files := siteTree()
	delete(files, "src/pages/careers/index.tsx")
	delete(files, "docs/key-terminology.md")
	root := writeTree(t, files)
	cfg := config.Default()
	idx, err := Build(root, cfg)
	require.NoError(t, err)

	report, err := CheckLinks(cfg, idx, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeBrokenLink))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryLinks))
	assert.Contains(t, err.Error(), `"/careers"`)
	assert.Contains(t, err.Error(), `"doc:key-terminology"`)
	assert.Equal(t, []Broken{
		{Source: "themeConfig.navbar.items[3]", Target: "doc:key-terminology"},
		{Source: "themeConfig.navbar.items[4]", Target: "/careers"},
	}, report.Broken)
}

func TestCheckLinksPolicies(t *testing.T) {
	files := siteTree()
	delete(files, "src/pages/careers/index.tsx")
	root := writeTree(t, files)

	cases := []struct {
		policy config.BrokenLinkPolicy
		logged string
	}{
		{config.PolicyWarn, "level=WARN"},
		{config.PolicyLog, "level=INFO"},
		{config.PolicyIgnore, ""},
	}
	for _, tc := range cases {
		t.Run(string(tc.policy), func(t *testing.T) {
			cfg := config.Default()
			cfg.OnBrokenLinks = tc.policy
			idx, err := Build(root, cfg)
			require.NoError(t, err)

			logger, buf := testLogger()
			report, err := CheckLinks(cfg, idx, logger)
			require.NoError(t, err)
			require.Len(t, report.Broken, 1)
			if tc.logged == "" {
				assert.NotContains(t, buf.String(), "Broken link")
				return
			}
			assert.Contains(t, buf.String(), tc.logged)
			assert.Contains(t, buf.String(), "target=/careers")
		})
	}
}

func TestCheckMarkdownLinks(t *testing.T) {
	root := writeTree(t, siteTree())
	cfg := config.Default()
	idx, err := Build(root, cfg)
	require.NoError(t, err)

	logger, buf := testLogger()
	report, err := CheckMarkdownLinks(cfg, idx, logger)
	require.NoError(t, err, "markdown links only warn by default")
	assert.Equal(t, config.PolicyWarn, report.Policy)
	assert.Equal(t, 7, report.Checked)
	assert.Equal(t, []Broken{
		{Source: "docs/intro.md", Target: "nope.md", Line: 8},
		{Source: "docs/intro.md", Target: "/img/gone.png", Line: 14},
	}, report.Broken)
	assert.Contains(t, buf.String(), "Broken markdown link")

	cfg.OnBrokenMarkdownLinks = config.PolicyThrow
	_, err = CheckMarkdownLinks(cfg, idx, logger)
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeBrokenLink))
}
