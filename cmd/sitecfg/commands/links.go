package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	ferrors "git.home.luguber.info/inful/sitecfg/internal/foundation/errors"
)

// LinksCmd implements the 'links' command.
type LinksCmd struct {
	Format   string `short:"f" help:"Output format (text or json)" default:"text" enum:"text,json"`
	External bool   `help:"Only print external links"`
}

func (l *LinksCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(g, root)
	if err != nil {
		return err
	}
	links := config.ResolveLinks(cfg)
	if l.External {
		filtered := links[:0]
		for _, link := range links {
			if link.Kind == config.LinkExternal {
				filtered = append(filtered, link)
			}
		}
		links = filtered
	}
	recordResolved(g.Recorder, cfg)

	if l.Format == "json" {
		data, err := json.MarshalIndent(links, "", "  ")
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode links").Build()
		}
		_, err = fmt.Fprintln(g.Out, string(data))
		return err
	}

	tw := tabwriter.NewWriter(g.Out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "SOURCE\tLABEL\tKIND\tTARGET")
	for _, link := range links {
		target := link.Target
		switch {
		case link.DocID != "":
			target = "doc:" + link.DocID
		case link.Kind == config.LinkInternal:
			target = cfg.Route(link.Target)
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", link.Source, link.Label, link.Kind, target)
	}
	return tw.Flush()
}
