package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
	"git.home.luguber.info/inful/sitecfg/internal/preview"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Addr      string        `help:"Listen address" default:"127.0.0.1:3000"`
	Root      string        `short:"r" help:"Site source directory; enables routes.json and static files" type:"path"`
	StaticDir string        `name:"static-dir" help:"Static directory relative to --root" default:"static"`
	Debounce  time.Duration `help:"Quiet period before reloading after a change" default:"300ms"`
	NoWatch   bool          `name:"no-watch" help:"Do not reload when configuration files change"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	reg := prom.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	srv, err := preview.New(preview.Options{
		Addr: p.Addr,
		Load: func() (*config.Config, error) {
			return config.LoadLayered(root.Paths(), root.LoadOptions(g.Logger)...)
		},
		WatchPaths: root.Paths(),
		Root:       p.Root,
		StaticDir:  p.StaticDir,
		Debounce:   p.Debounce,
		Logger:     g.Logger,
		Recorder:   recorder,
		Registry:   reg,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchErr := make(chan error, 1)
	if p.NoWatch {
		close(watchErr)
	} else {
		go func() { watchErr <- srv.Watch(ctx) }()
	}

	serveErr := srv.ListenAndServe(ctx)
	// The watcher only stops with ctx; a server failure must stop it too.
	stop()
	return errors.Join(serveErr, <-watchErr)
}
