package commands

import (
	"errors"
	"fmt"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/routes"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	Root       string `short:"r" help:"Site source directory holding docs, blog, pages and static files" default:"." type:"path"`
	StaticDir  string `name:"static-dir" help:"Static directory relative to --root" default:"static"`
	Drafts     bool   `help:"Include draft pages in the route index"`
	NoMarkdown bool   `name:"no-markdown" help:"Skip checking links inside markdown sources"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	idx, err := buildIndex(g, cfg, c.Root, c.StaticDir, c.Drafts)
	if err != nil {
		return err
	}
	links, mdLinks, err := checkAll(g, cfg, idx, !c.NoMarkdown)
	if links != nil {
		_, _ = fmt.Fprintf(g.Out, "links: %d checked, %d broken (%s)\n", links.Checked, len(links.Broken), links.Policy)
	}
	if mdLinks != nil {
		_, _ = fmt.Fprintf(g.Out, "markdown links: %d checked, %d broken (%s)\n", mdLinks.Checked, len(mdLinks.Broken), mdLinks.Policy)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "configuration valid: %d routes\n", idx.Len())
	return nil
}

func buildIndex(g *Global, cfg *config.Config, dir, staticDir string, drafts bool) (*routes.Index, error) {
	opts := []routes.Option{routes.WithLogger(g.Logger), routes.WithStaticDir(staticDir)}
	if drafts {
		opts = append(opts, routes.WithDrafts())
	}
	idx, err := routes.Build(dir, cfg, opts...)
	if err != nil {
		return nil, err
	}
	g.Logger.Debug("Route index built", logfields.Path(dir), logfields.Count(idx.Len()))
	return idx, nil
}

// checkAll runs both link checks under their own policies and joins the
// errors of both, so a throwing navbar check does not hide markdown results.
func checkAll(g *Global, cfg *config.Config, idx *routes.Index, markdown bool) (links, mdLinks *routes.Report, err error) {
	recordResolved(g.Recorder, cfg)

	err = metrics.Timed(g.Recorder, metrics.StageLinks, func() error {
		var linkErr, mdErr error
		links, linkErr = routes.CheckLinks(cfg, idx, g.Logger)
		if links != nil {
			g.Recorder.AddBrokenLinks("navigation", len(links.Broken))
		}
		if markdown {
			mdLinks, mdErr = routes.CheckMarkdownLinks(cfg, idx, g.Logger)
			if mdLinks != nil {
				g.Recorder.AddBrokenLinks("markdown", len(mdLinks.Broken))
			}
		}
		return errors.Join(linkErr, mdErr)
	})
	return links, mdLinks, err
}

func recordResolved(r metrics.Recorder, cfg *config.Config) {
	counts := map[config.LinkKind]int{config.LinkInternal: 0, config.LinkExternal: 0}
	for _, l := range config.ResolveLinks(cfg) {
		counts[l.Kind]++
	}
	for kind, n := range counts {
		r.SetResolvedLinks(string(kind), n)
	}
}
