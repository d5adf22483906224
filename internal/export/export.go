// Package export writes a site's resolved configuration, link table,
// homepage and build manifest into an output directory. Exports are all or
// nothing: artifacts are staged next to the output and promoted in one
// rename, so a failed run leaves the previous output in place.
package export

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
	"git.home.luguber.info/inful/sitecfg/internal/homepage"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/manifest"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/routes"
	"git.home.luguber.info/inful/sitecfg/internal/version"
)

// Artifact names inside the output directory.
const (
	ConfigFile   = "siteconfig.yaml"
	LinksFile    = "links.json"
	RoutesFile   = "routes.json"
	HomepageFile = "index.html"
	ManifestFile = "manifest.json"
)

// Options controls a single export.
type Options struct {
	// OutDir is the final output directory. Required.
	OutDir string
	// Root is the site source directory. When set and Index is nil the
	// route index is built from it.
	Root string
	// Index is a prebuilt route index.
	Index *routes.Index
	// StaticDir is relative to Root. Defaults to routes.DefaultStaticDir.
	StaticDir string
	// Fingerprint serves homepage assets under content hashed names and
	// copies them into the output. Requires Root.
	Fingerprint bool
	// Stylesheets replaces cfg.Stylesheets when non-nil.
	Stylesheets []config.Stylesheet
	// Sources are the configuration files the export was loaded from.
	Sources []string
	Git     *manifest.GitInput

	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Now fixes the manifest timestamp and the copyright year.
	Now func() time.Time
}

// Result describes a promoted export.
type Result struct {
	BuildID  string
	OutDir   string
	Manifest *manifest.BuildManifest
}

type run struct {
	cfg      *config.Config
	opts     Options
	logger   *slog.Logger
	recorder metrics.Recorder
	stageDir string
	hashes   map[string]string
}

// Run exports cfg into opts.OutDir.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if cfg == nil {
		return nil, ferrors.InternalError("config nil").Build()
	}
	if opts.OutDir == "" {
		return nil, ferrors.ConfigError("output directory required").WithCode(ferrors.CodeMissingField).Build()
	}
	r := &run{
		cfg:      cfg,
		opts:     opts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
		hashes:   map[string]string{},
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.recorder == nil {
		r.recorder = metrics.NoopRecorder{}
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	start := now()
	m := &manifest.BuildManifest{
		ID:        uuid.NewString(),
		Timestamp: start.UTC(),
		Version:   version.Version,
		Inputs: manifest.Inputs{
			ConfigSources:  opts.Sources,
			ConfigSnapshot: cfg.Snapshot(),
			ContentRoot:    opts.Root,
			Git:            opts.Git,
		},
	}
	logger := r.logger.With(logfields.BuildID(m.ID))
	r.logger = logger

	err := r.execute(ctx, m, start, now)
	elapsed := time.Since(start)
	r.recorder.ObserveBuildDuration(elapsed)
	if err != nil {
		r.abortStaging()
		r.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		logger.Error("Export failed", logfields.Path(opts.OutDir), logfields.Error(err))
		return nil, err
	}
	r.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
	logger.Info("Export complete",
		logfields.Path(opts.OutDir),
		logfields.Count(len(r.hashes)),
		logfields.DurationMS(float64(elapsed.Milliseconds())))
	return &Result{BuildID: m.ID, OutDir: opts.OutDir, Manifest: m}, nil
}

func (r *run) execute(ctx context.Context, m *manifest.BuildManifest, start time.Time, now func() time.Time) error {
	idx := r.opts.Index
	if idx == nil && r.opts.Root != "" {
		built, err := routes.Build(r.opts.Root, r.cfg,
			routes.WithLogger(r.logger), routes.WithStaticDir(r.staticDir()))
		if err != nil {
			return err
		}
		idx = built
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.beginStaging(); err != nil {
		return err
	}

	err := metrics.Timed(r.recorder, metrics.StageRender, func() error {
		return r.render(ctx, idx, start)
	})
	if err != nil {
		return err
	}

	if idx != nil {
		for _, p := range idx.Pages() {
			m.Pages = append(m.Pages, manifest.PageEntry{
				Route:       p.Route,
				Kind:        string(p.Kind),
				Source:      p.Source,
				Fingerprint: p.Fingerprint,
			})
		}
	}
	m.Outputs = manifest.Outputs{ContentHash: manifest.ContentHash(m.Pages), ArtifactHashes: r.hashes}
	m.Status = manifest.StatusSuccess
	m.Duration = now().Sub(start).Milliseconds()
	data, err := m.ToJSON()
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode manifest").Build()
	}
	// The manifest lists artifact hashes and is not itself listed.
	if err := r.write(ManifestFile, data, false); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return metrics.Timed(r.recorder, metrics.StagePromote, r.finalizeStaging)
}

func (r *run) render(ctx context.Context, idx *routes.Index, start time.Time) error {
	data, err := config.Marshal(r.cfg)
	if err != nil {
		return err
	}
	if err := r.write(ConfigFile, data, true); err != nil {
		return err
	}

	links := config.ResolveLinks(r.cfg)
	if err := r.writeJSON(LinksFile, links); err != nil {
		return err
	}
	if idx != nil {
		if err := r.writeJSON(RoutesFile, idx.Pages()); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var assets homepage.AssetResolver = homepage.StaticResolver{Site: r.cfg.SiteIdentity}
	var fingerprints *homepage.FingerprintResolver
	if r.opts.Fingerprint {
		if r.opts.Root == "" {
			return ferrors.ConfigError("fingerprinted assets need a site root").Build()
		}
		fingerprints = homepage.NewFingerprintResolver(filepath.Join(r.opts.Root, r.staticDir()), r.cfg.SiteIdentity)
		assets = fingerprints
	}
	var page bytes.Buffer
	err = homepage.Render(&page, r.cfg, homepage.Options{
		Assets:      assets,
		Stylesheets: r.opts.Stylesheets,
		Index:       idx,
		Now:         start,
	})
	if err != nil {
		return err
	}
	if err := r.write(HomepageFile, page.Bytes(), true); err != nil {
		return err
	}

	if fingerprints == nil {
		return nil
	}
	for _, a := range fingerprints.Assets() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.copyAsset(a); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) staticDir() string {
	if r.opts.StaticDir != "" {
		return r.opts.StaticDir
	}
	return routes.DefaultStaticDir
}

func (r *run) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode "+name).Build()
	}
	return r.write(name, append(data, '\n'), true)
}

// write places data at name inside the stage, recording its hash when track is set.
func (r *run) write(name string, data []byte, track bool) error {
	dst := filepath.Join(r.stageDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").
			WithContext(ferrors.ContextTarget, dst).Build()
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil { //nolint:gosec // published site files are world readable
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write artifact").
			WithContext(ferrors.ContextTarget, dst).Build()
	}
	if track {
		sum := sha256.Sum256(data)
		r.hashes[name] = hex.EncodeToString(sum[:])
	}
	r.logger.Debug("Wrote artifact", logfields.Path(name), slog.Int("bytes", len(data)))
	return nil
}

func (r *run) copyAsset(a homepage.Asset) error {
	src, err := os.Open(a.Source)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to open asset").
			WithContext(ferrors.ContextSource, a.Source).Build()
	}
	defer func() { _ = src.Close() }()

	dst := filepath.Join(r.stageDir, filepath.FromSlash(a.Name))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create directory").
			WithContext(ferrors.ContextTarget, dst).Build()
	}
	out, err := os.Create(dst) //nolint:gosec // dst is inside the stage directory
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create asset").
			WithContext(ferrors.ContextTarget, dst).Build()
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to copy asset").
			WithContext(ferrors.ContextTarget, dst).Build()
	}
	if err := out.Close(); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to close asset").
			WithContext(ferrors.ContextTarget, dst).Build()
	}
	r.hashes[a.Name] = a.Hash
	return nil
}

// Artifacts lists the artifact names recorded in m, sorted.
func Artifacts(m *manifest.BuildManifest) []string {
	names := make([]string, 0, len(m.Outputs.ArtifactHashes))
	for name := range m.Outputs.ArtifactHashes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
