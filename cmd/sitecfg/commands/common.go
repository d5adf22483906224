package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/sitecfg/internal/config"
	"git.home.luguber.info/inful/sitecfg/internal/logfields"
	"git.home.luguber.info/inful/sitecfg/internal/metrics"
)

// LogLevelEnv overrides the log level unless --verbose is given.
const LogLevelEnv = "SITECFG_LOG_LEVEL"

// Global carries state shared by every command.
type Global struct {
	Logger   *slog.Logger
	Recorder metrics.Recorder
	// Out receives command output; logs go to stderr.
	Out io.Writer
}

// NewGlobal returns a Global writing to stdout with the default logger.
func NewGlobal() *Global {
	return &Global{Logger: slog.Default(), Recorder: metrics.NoopRecorder{}, Out: os.Stdout}
}

// CLI definition & global flags.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"siteconfig.yaml" type:"path"`
	Overlay   []string         `help:"Configuration overlays applied in order after --config" type:"path"`
	Strict    bool             `help:"Reject unknown configuration keys"`
	NoEnv     bool             `name:"no-env" help:"Do not load .env files next to the configuration"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text or json)" default:"text" enum:"text,json"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check        CheckCmd        `cmd:"" help:"Validate the configuration and check navbar, footer and markdown links"`
	Build        BuildCmd        `cmd:"" help:"Export the resolved configuration, link table and homepage"`
	Links        LinksCmd        `cmd:"" help:"Print the resolved link table"`
	Merge        MergeCmd        `cmd:"" help:"Merge configuration layers and print the result"`
	VerifyAssets VerifyAssetsCmd `cmd:"" name:"verify-assets" help:"Fetch stylesheets and verify their integrity metadata"`
	Init         InitCmd         `cmd:"" help:"Write an example configuration seeded from the git checkout"`
	Preview      PreviewCmd      `cmd:"" help:"Serve the homepage and resolved configuration, reloading on change"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(NewLogger(os.Stderr, c.Verbose, c.LogFormat))
	return nil
}

// NewLogger builds the process logger. --verbose wins over SITECFG_LOG_LEVEL.
func NewLogger(w io.Writer, verbose bool, format string) *slog.Logger {
	level := slog.LevelInfo
	if raw := strings.TrimSpace(os.Getenv(LogLevelEnv)); raw != "" {
		level = config.NormalizeLogLevel(raw).SlogLevel()
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if config.NormalizeLogFormat(format) == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Paths returns the configuration layers in application order.
func (c *CLI) Paths() []string {
	return append([]string{c.Config}, c.Overlay...)
}

// LoadOptions returns the loader options selected by the global flags.
func (c *CLI) LoadOptions(logger *slog.Logger) []config.Option {
	opts := []config.Option{config.WithStrict(c.Strict), config.WithLogger(logger)}
	if c.NoEnv {
		opts = append(opts, config.WithoutEnvFiles())
	}
	return opts
}

// LoadConfig loads every configuration layer and records the load stage.
func LoadConfig(g *Global, root *CLI) (*config.Config, error) {
	var cfg *config.Config
	err := metrics.Timed(g.Recorder, metrics.StageLoad, func() error {
		var err error
		cfg, err = config.LoadLayered(root.Paths(), root.LoadOptions(g.Logger)...)
		return err
	})
	if err != nil {
		return nil, err
	}
	g.Logger.Debug("Configuration loaded",
		slog.Any("sources", root.Paths()),
		logfields.Snapshot(cfg.Snapshot()))
	return cfg, nil
}
