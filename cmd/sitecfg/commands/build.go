package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/export"
	"git.home.luguber.info/inful/sitecfg/internal/gitinfo"
	"git.home.luguber.info/inful/sitecfg/internal/integrity"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/manifest"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/retry"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output        string        `short:"o" help:"Output directory" default:"build" type:"path"`
	Root          string        `short:"r" help:"Site source directory holding docs, blog, pages and static files" default:"." type:"path"`
	StaticDir     string        `name:"static-dir" help:"Static directory relative to --root" default:"static"`
	Drafts        bool          `help:"Include draft pages in the route index"`
	Fingerprint   bool          `help:"Copy homepage assets under content-hashed names"`
	VerifyAssets  bool          `name:"verify-assets" help:"Fetch stylesheets and drop those failing integrity verification"`
	Timeout       time.Duration `help:"Timeout for each stylesheet fetch" default:"10s"`
	Retries       int           `help:"Retries for stylesheet fetches failing with server or transport errors" default:"2"`
	SkipLinkCheck bool          `name:"skip-link-check" help:"Do not check navbar, footer and markdown links"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	idx, err := buildIndex(g, cfg, b.Root, b.StaticDir, b.Drafts)
	if err != nil {
		return err
	}
	if !b.SkipLinkCheck {
		if _, _, err := checkAll(g, cfg, idx, true); err != nil {
			return err
		}
	}

	ctx := context.Background()
	var sheets []config.Stylesheet
	if b.VerifyAssets {
		sheets, err = b.verifiedStylesheets(ctx, g, cfg)
		if err != nil {
			return err
		}
	}

	res, err := export.Run(ctx, cfg, export.Options{
		OutDir:      b.Output,
		Root:        b.Root,
		Index:       idx,
		StaticDir:   b.StaticDir,
		Fingerprint: b.Fingerprint,
		Stylesheets: sheets,
		Sources:     root.Paths(),
		Git:         detectGit(g.Logger, b.Root),
		Logger:      g.Logger,
		Recorder:    g.Recorder,
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "build %s written to %s (%d artifacts)\n",
		res.BuildID, res.OutDir, len(export.Artifacts(res.Manifest)))
	return nil
}

// verifiedStylesheets returns the stylesheets that may be applied. A sheet
// failing verification is dropped with a warning rather than failing the
// build; verify-assets is the command that fails on mismatches.
func (b *BuildCmd) verifiedStylesheets(ctx context.Context, g *Global, cfg *config.Config) ([]config.Stylesheet, error) {
	v := newVerifier(g, cfg.PageURL("/"), b.Timeout, b.Retries)
	var report *integrity.Report
	err := metrics.Timed(g.Recorder, metrics.StageIntegrity, func() error {
		var err error
		report, err = v.VerifyAll(ctx, config.StylesheetResources(cfg.Stylesheets))
		if report == nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, f := range report.Failed {
		g.Logger.Warn("Dropping stylesheet that failed verification",
			logfields.URL(f.Resource.Href), logfields.Error(f.Err))
	}
	return config.ApplicableStylesheets(cfg.Stylesheets, report), nil
}

func newVerifier(g *Global, baseURL string, timeout time.Duration, retries int) *integrity.Verifier {
	d := retry.DefaultPolicy()
	return integrity.NewVerifier(timeout,
		integrity.WithBaseURL(baseURL),
		integrity.WithRetry(retry.NewPolicy(d.Mode, d.Initial, d.Max, retries)),
		integrity.WithLogger(g.Logger),
		integrity.WithRecorder(g.Recorder))
}

// detectGit records the checkout in the manifest when dir is inside one.
func detectGit(logger *slog.Logger, dir string) *manifest.GitInput {
	info, err := gitinfo.Detect(dir)
	if err != nil {
		logger.Debug("No git metadata for build manifest", logfields.Path(dir), logfields.Error(err))
		return nil
	}
	return &manifest.GitInput{Remote: info.Remote, Branch: info.Branch, Commit: info.Commit}
}
