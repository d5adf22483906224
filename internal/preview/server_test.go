package preview

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/util/sets"
)

const siteYAML = `title: RISC Zero
url: https://risczero.com
baseUrl: /
presets:
  - name: classic
    docs: {}
themeConfig:
  navbar:
    items:
      - label: Blog
        to: /blog
      - label: GitHub
        href: https://github.com/risc0
        position: right
`

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newServer(t *testing.T, opts Options) (*Server, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "siteconfig.yaml")
	writeConfig(t, path, siteYAML)
	opts.Load = func() (*config.Config, error) {
		return config.Load(path, config.WithoutEnvFiles())
	}
	opts.WatchPaths = []string{path}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s, err := New(opts)
	require.NoError(t, err)
	return s, path
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewRequiresLoader(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestNewFailsOnInitialLoad(t *testing.T) {
	_, err := New(Options{Load: func() (*config.Config, error) {
		return nil, ferrors.MissingField("title").Build()
	}})
	require.Error(t, err)
	assert.True(t, ferrors.HasCode(err, ferrors.CodeMissingField))
}

func TestServesHomepage(t *testing.T) {
	s, _ := newServer(t, Options{})
	rec := get(t, s.Handler(), "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<title>RISC Zero")
}

func TestServesConfigAndLinks(t *testing.T) {
	s, _ := newServer(t, Options{})

	rec := get(t, s.Handler(), "/siteconfig.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	cfg, err := config.Parse(rec.Body.Bytes(), config.WithoutEnvExpansion())
	require.NoError(t, err)
	assert.Equal(t, s.Config().Snapshot(), cfg.Snapshot())

	rec = get(t, s.Handler(), "/links.json")
	require.Equal(t, http.StatusOK, rec.Code)
	var links []config.ResolvedLink
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &links))
	require.Len(t, links, 2)
	assert.Equal(t, config.LinkInternal, links[0].Kind)
	assert.Equal(t, config.LinkExternal, links[1].Kind)
}

func TestRoutesNeedRoot(t *testing.T) {
	s, _ := newServer(t, Options{})
	rec := get(t, s.Handler(), "/routes.json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServesStaticFilesAndRoutes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "static", "img"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "static", "img", "logo.png"), []byte("png"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "intro.md"), []byte("# Intro\n"), 0o600))
	s, _ := newServer(t, Options{Root: root})

	rec := get(t, s.Handler(), "/img/logo.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/img/missing.png").Code)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/img").Code)

	rec = get(t, s.Handler(), "/routes.json")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"route": "/docs/intro"`)
}

func TestHealthAndReload(t *testing.T) {
	reg := prom.NewRegistry()
	s, path := newServer(t, Options{Registry: reg, Recorder: metrics.NewPrometheusRecorder(reg)})
	good := s.Config().Snapshot()

	var h Health
	rec := get(t, s.Handler(), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, good, h.Snapshot)

	writeConfig(t, path, "title: RISC Zero\nurl: not a url\nbaseUrl: /\n")
	err := s.Reload()
	require.Error(t, err)
	assert.Equal(t, good, s.Config().Snapshot(), "last good configuration stays in service")

	rec = get(t, s.Handler(), "/healthz")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "degraded", h.Status)
	assert.Equal(t, string(ferrors.CategoryConfig), h.Category)
	assert.Equal(t, 1, h.Reloads)
	assert.Equal(t, http.StatusOK, get(t, s.Handler(), "/").Code)

	writeConfig(t, path, strings.Replace(siteYAML, "title: RISC Zero", "title: Bonsai", 1))
	require.NoError(t, s.Reload())
	assert.Equal(t, "Bonsai", s.Config().Title)

	rec = get(t, s.Handler(), "/healthz")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, "ok", h.Status)
	assert.Empty(t, h.LastError)

	rec = get(t, s.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sitecfg_config_reloads_total{result="failed"} 1`)
	assert.Contains(t, body, `sitecfg_config_reloads_total{result="success"} 1`)
}

func TestReloadsRunInOrder(t *testing.T) {
	titled := func(title string) *config.Config {
		cfg, err := config.Parse([]byte(strings.Replace(siteYAML, "title: RISC Zero", "title: "+title, 1)), config.WithoutEnvFiles())
		require.NoError(t, err)
		return cfg
	}
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	s, err := New(Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Load: func() (*config.Config, error) {
			switch calls.Add(1) {
			case 1:
				return titled("RISC Zero"), nil
			case 2:
				close(entered)
				<-release
				return titled("Older"), nil
			default:
				return titled("Newer"), nil
			}
		},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); assert.NoError(t, s.Reload()) }()
	<-entered
	go func() { defer wg.Done(); assert.NoError(t, s.Reload()) }()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, "Newer", s.Config().Title)
	assert.EqualValues(t, 3, calls.Load())
}

func TestWatchReloadsOnChange(t *testing.T) {
	s, path := newServer(t, Options{Debounce: 20 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	updated := strings.Replace(siteYAML, "title: RISC Zero", "title: Bonsai", 1)
	require.Eventually(t, func() bool {
		if s.Config().Title == "Bonsai" {
			return true
		}
		// Rewrite until the watcher has registered the directory.
		writeConfig(t, path, updated)
		return false
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestIsConfigEvent(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "siteconfig.yaml")
	files := sets.New(cfgPath)

	assert.True(t, isConfigEvent(fsnotify.Event{Name: cfgPath, Op: fsnotify.Write}, files))
	assert.True(t, isConfigEvent(fsnotify.Event{Name: cfgPath, Op: fsnotify.Create}, files))
	assert.True(t, isConfigEvent(fsnotify.Event{Name: cfgPath, Op: fsnotify.Rename}, files))
	assert.False(t, isConfigEvent(fsnotify.Event{Name: cfgPath, Op: fsnotify.Remove}, files))
	assert.False(t, isConfigEvent(fsnotify.Event{Name: filepath.Join(dir, "other.yaml"), Op: fsnotify.Write}, files))
	assert.False(t, isConfigEvent(fsnotify.Event{Name: filepath.Join(dir, ".siteconfig.yaml.swp"), Op: fsnotify.Write}, files))
}

func TestShouldIgnoreEvent(t *testing.T) {
	require.True(t, shouldIgnoreEvent("/tmp/.hidden.yaml"))
	require.True(t, shouldIgnoreEvent("/tmp/#foo#"))
	require.True(t, shouldIgnoreEvent("/tmp/foo.swp"))
	require.True(t, shouldIgnoreEvent("/tmp/siteconfig.yaml~"))
	require.True(t, shouldIgnoreEvent("/tmp/.DS_Store"))
	require.False(t, shouldIgnoreEvent("/tmp/siteconfig.yaml"))
}
