package export

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/manifest"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/testutil/testutils"
)

var fixedNow = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

type outcomeRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	outcomes []metrics.BuildOutcomeLabel
	stages   map[string]metrics.ResultLabel
}

func (r *outcomeRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *outcomeRecorder) IncStageResult(stage string, res metrics.ResultLabel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stages == nil {
		r.stages = map[string]metrics.ResultLabel{}
	}
	r.stages[stage] = res
}

func writeSite(t *testing.T) string {
	t.Helper()
	return testutils.WriteTree(t, map[string]string{
		"docs/intro.md":               "---\ntitle: Intro\n---\n# Intro\n",
		"static/img/favicon.ico":      "ico",
		"static/img/logo.png":         "logo",
		"static/img/banner.png":       "wide",
		"static/img/banner-small.png": "narrow",
	})
}

func sha(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func readManifest(t *testing.T, out string) *manifest.BuildManifest {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(out, ManifestFile))
	require.NoError(t, err)
	m, err := manifest.FromJSON(data)
	require.NoError(t, err)
	return m
}

func TestRunWritesArtifacts(t *testing.T) {
	root := writeSite(t)
	out := filepath.Join(t.TempDir(), "site")
	cfg := config.Default()
	rec := &outcomeRecorder{}

	res, err := Run(context.Background(), cfg, Options{
		OutDir:      out,
		Root:        root,
		Fingerprint: true,
		Sources:     []string{"siteconfig.yaml"},
		Git:         &manifest.GitInput{Branch: "main", Commit: "abc123"},
		Recorder:    rec,
		Now:         fixedNow,
	})
	require.NoError(t, err)
	_, err = uuid.Parse(res.BuildID)
	require.NoError(t, err)
	assert.Equal(t, out, res.OutDir)

	for _, name := range []string{ConfigFile, LinksFile, RoutesFile, HomepageFile, ManifestFile} {
		assert.FileExists(t, filepath.Join(out, name))
	}
	assert.NoDirExists(t, StageDir(out))

	m := readManifest(t, out)
	assert.Equal(t, res.BuildID, m.ID)
	assert.Equal(t, manifest.StatusSuccess, m.Status)
	assert.True(t, fixedNow().Equal(m.Timestamp))
	assert.Equal(t, cfg.Snapshot(), m.Inputs.ConfigSnapshot)
	assert.Equal(t, []string{"siteconfig.yaml"}, m.Inputs.ConfigSources)
	require.NotNil(t, m.Inputs.Git)
	assert.Equal(t, "abc123", m.Inputs.Git.Commit)
	assert.NotEmpty(t, m.Outputs.ContentHash)
	assert.NotContains(t, m.Outputs.ArtifactHashes, ManifestFile)

	for _, name := range Artifacts(m) {
		assert.Equal(t, sha(t, filepath.Join(out, filepath.FromSlash(name))), m.Outputs.ArtifactHashes[name], name)
	}

	var banner string
	for name := range m.Outputs.ArtifactHashes {
		if strings.HasPrefix(name, "img/banner.") {
			banner = name
		}
	}
	require.NotEmpty(t, banner, "fingerprinted banner copied")
	page, err := os.ReadFile(filepath.Join(out, HomepageFile))
	require.NoError(t, err)
	assert.Contains(t, string(page), "/"+banner)
	assert.Contains(t, string(page), "Copyright © 2024 Risc0")

	var intro *manifest.PageEntry
	for i := range m.Pages {
		if m.Pages[i].Route == "/docs/intro" {
			intro = &m.Pages[i]
		}
	}
	require.NotNil(t, intro)
	assert.Equal(t, "doc", intro.Kind)
	assert.NotEmpty(t, intro.Fingerprint)

	data, err := os.ReadFile(filepath.Join(out, ConfigFile))
	require.NoError(t, err)
	reparsed, err := config.Parse(data, config.WithoutEnvExpansion())
	require.NoError(t, err)
	assert.Equal(t, cfg.Snapshot(), reparsed.Snapshot())

	var links []config.ResolvedLink
	data, err = os.ReadFile(filepath.Join(out, LinksFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &links))
	assert.Equal(t, config.ResolveLinks(cfg), links)

	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeSuccess}, rec.outcomes)
	assert.Equal(t, metrics.ResultSuccess, rec.stages[metrics.StageRender])
	assert.Equal(t, metrics.ResultSuccess, rec.stages[metrics.StagePromote])
}

func TestRunReplacesPreviousOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(out, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.txt"), []byte("old"), 0o600))

	_, err := Run(context.Background(), config.Default(), Options{OutDir: out, Now: fixedNow})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(out, "stale.txt"))
	assert.FileExists(t, filepath.Join(out, HomepageFile))
	assert.NoFileExists(t, filepath.Join(out, RoutesFile), "no route index without a site root")
	assert.NoDirExists(t, out+".prev", "backup is removed before Run returns")

	_, err = Run(context.Background(), config.Default(), Options{OutDir: out, Now: fixedNow})
	require.NoError(t, err)
	assert.NoDirExists(t, out+".prev")
}

func TestRunFailureKeepsPreviousOutput(t *testing.T) {
	root := t.TempDir() // no static assets to fingerprint
	out := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(out, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "keep.txt"), []byte("previous"), 0o600))
	rec := &outcomeRecorder{}

	_, err := Run(context.Background(), config.Default(), Options{
		OutDir:      out,
		Root:        root,
		Fingerprint: true,
		Recorder:    rec,
		Now:         fixedNow,
	})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))

	data, readErr := os.ReadFile(filepath.Join(out, "keep.txt"))
	require.NoError(t, readErr)
	assert.Equal(t, "previous", string(data))
	assert.NoFileExists(t, filepath.Join(out, HomepageFile))
	assert.NoDirExists(t, StageDir(out))
	assert.Equal(t, []metrics.BuildOutcomeLabel{metrics.BuildOutcomeFailed}, rec.outcomes)
	assert.Equal(t, metrics.ResultFatal, rec.stages[metrics.StageRender])
}

func TestRunCanceled(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, config.Default(), Options{OutDir: out})
	require.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, out)
	assert.NoDirExists(t, StageDir(out))
}

func TestRunDiscardsLeftoverStage(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.MkdirAll(StageDir(out), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(StageDir(out), "junk"), nil, 0o600))

	_, err := Run(context.Background(), config.Default(), Options{OutDir: out})
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(out, "junk"))
}

func TestRunStylesheetOverride(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")
	cfg := config.Default()
	require.NotEmpty(t, cfg.Stylesheets)

	_, err := Run(context.Background(), cfg, Options{OutDir: out, Stylesheets: []config.Stylesheet{}})
	require.NoError(t, err)
	page, err := os.ReadFile(filepath.Join(out, HomepageFile))
	require.NoError(t, err)
	assert.NotContains(t, string(page), "katex")

	// The exported configuration still lists every sheet.
	data, err := os.ReadFile(filepath.Join(out, ConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "katex")
}

func TestRunRequiresOutDir(t *testing.T) {
	_, err := Run(context.Background(), config.Default(), Options{})
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingField))

	_, err = Run(context.Background(), nil, Options{OutDir: t.TempDir()})
	require.Error(t, err)
}

func TestRunFingerprintNeedsRoot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "site")
	_, err := Run(context.Background(), config.Default(), Options{OutDir: out, Fingerprint: true})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.NoDirExists(t, out)
}
