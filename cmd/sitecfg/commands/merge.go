package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
)

// MergeCmd implements the 'merge' command.
type MergeCmd struct {
	Output      string `short:"o" help:"Write the merged configuration to this file instead of stdout" type:"path"`
	FromDefault bool   `name:"from-default" help:"Overlay --config and --overlay files onto the built-in example configuration"`
}

func (m *MergeCmd) Run(g *Global, root *CLI) error {
	var cfg *config.Config
	var err error
	if m.FromDefault {
		cfg, err = m.mergeOntoDefault(g, root)
	} else {
		cfg, err = LoadConfig(g, root)
	}
	if err != nil {
		return err
	}

	if m.Output != "" {
		if err := config.WriteFile(m.Output, cfg); err != nil {
			return err
		}
		g.Logger.Info("Merged configuration written", logfields.Path(m.Output), logfields.Snapshot(cfg.Snapshot()))
		return nil
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(g.Out, string(data))
	return err
}

// mergeOntoDefault treats every layer as a typed overlay of Default(). Env
// files next to --config are loaded once, as for the layered load.
func (m *MergeCmd) mergeOntoDefault(g *Global, root *CLI) (*config.Config, error) {
	opts := append(root.LoadOptions(g.Logger), config.WithEnvDir(filepath.Dir(root.Config)))
	cfg := config.Default()
	for _, path := range root.Paths() {
		overlay, err := config.LoadOverlay(path, opts...)
		if err != nil {
			return nil, err
		}
		if cfg, err = config.Merge(cfg, overlay); err != nil {
			return nil, err
		}
		g.Logger.Debug("Overlay applied", logfields.Path(path))
	}
	return config.Finalize(cfg)
}
