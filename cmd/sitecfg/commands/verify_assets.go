package commands

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/integrity"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
)

// VerifyAssetsCmd implements the 'verify-assets' command.
type VerifyAssetsCmd struct {
	Timeout time.Duration `help:"Timeout for each stylesheet fetch" default:"10s"`
	Retries int           `help:"Retries for fetches failing with server or transport errors" default:"2"`
	BaseURL string        `name:"base-url" help:"Resolve relative stylesheet hrefs against this URL instead of the site url"`
}

func (v *VerifyAssetsCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	base := cfg.PageURL("/")
	if v.BaseURL != "" {
		base = v.BaseURL
	}
	verifier := newVerifier(g, base, v.Timeout, v.Retries)

	var report *integrity.Report
	verr := metrics.Timed(g.Recorder, metrics.StageIntegrity, func() error {
		var err error
		report, err = verifier.VerifyAll(context.Background(), config.StylesheetResources(cfg.Stylesheets))
		return err
	})
	if report == nil {
		return verr
	}
	for _, res := range report.Verified {
		_, _ = fmt.Fprintf(g.Out, "ok        %s\n", res.Href)
	}
	for _, res := range report.Unchecked {
		_, _ = fmt.Fprintf(g.Out, "unchecked %s\n", res.Href)
	}
	for _, f := range report.Failed {
		_, _ = fmt.Fprintf(g.Out, "FAILED    %s: %v\n", f.Resource.Href, f.Err)
	}
	return verr
}
