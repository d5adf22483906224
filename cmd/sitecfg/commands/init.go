package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/gitinfo"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
	NoGit bool `name:"no-git" help:"Do not seed organization, project and edit urls from the git checkout"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	seed := config.Default()
	if !i.NoGit {
		dir := filepath.Dir(root.Config)
		info, err := gitinfo.Detect(dir)
		switch {
		case err != nil:
			g.Logger.Debug("Not seeding from git", logfields.Path(dir), logfields.Error(err))
		case info.Remote == "":
			g.Logger.Info("Git checkout has no origin remote; keeping example identity", logfields.Path(info.Root))
		default:
			info.Apply(seed)
			_, _ = fmt.Fprintf(g.Out, "Seeded from %s (%s/%s)\n", info.Remote, info.Organization, info.Project)
		}
	}
	if err := config.Init(root.Config, i.Force, seed); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "Configuration written to %s\n", root.Config)
	return nil
}
