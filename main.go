package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/widget/material"
	"gioui.org/x/explorer"
	"git.sr.ht/~whereswaldon/emchart/backend"
	"git.sr.ht/~whereswaldon/emchart/config"
	"github.com/rs/zerolog"
)

type options struct {
	trace    string
	follow   bool
	launch   bool
	feedArgs []string
	record   string
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "emchart.toml"
	}
	return filepath.Join(dir, "emchart", "emchart.toml")
}

func main() {
	configPath := flag.String("config", defaultConfigPath(), "Path to the TOML configuration file")
	tracePath := flag.String("trace", "", "Trace to open at startup; - reads standard input")
	follow := flag.Bool("follow", false, "Keep reading the trace file as it grows")
	launch := flag.Bool("launch", false, "Launch emchart-feed at startup")
	feedArgs := flag.String("feed-args", "", "Space separated arguments passed to emchart-feed")
	recordDir := flag.String("record-dir", ".", "Directory live traces are recorded into; empty disables recording")
	maxSlots := flag.Int("max-slots", -1, "Override the number of slots kept from a live trace")
	printConfig := flag.Bool("print-config", false, "Print the default configuration and exit")
	logLevel := flag.String("log-level", "info", "Minimum level of log messages")
	flag.Parse()

	if *printConfig {
		fmt.Print(config.Example)
		return
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		logger.Fatal().Err(err).Msg("bad log level")
	}
	logger = logger.Level(level)

	cfg, found, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed loading configuration")
	}
	if !found {
		logger.Debug().Str("path", *configPath).Msg("no configuration file, using defaults")
	}
	if *maxSlots >= 0 {
		cfg.MaxSlots = *maxSlots
	}
	opts := options{
		trace:    *tracePath,
		follow:   *follow,
		launch:   *launch,
		feedArgs: strings.Fields(*feedArgs),
		record:   *recordDir,
	}

	go func() {
		w := app.NewWindow(app.Title("emchart"))
		if err := loop(w, cfg, opts, logger); err != nil {
			logger.Fatal().Err(err).Msg("window closed")
		}
		os.Exit(0)
	}()
	app.Main()
}

// start opens the trace named on the command line, if any.
func start(ds *backend.Datasource, opts options) error {
	switch {
	case opts.launch:
		return ds.LaunchFeed()
	case opts.trace == "-":
		ds.LoadFromStream(backend.ModeLive, "stdin", os.Stdin)
	case opts.trace != "":
		return ds.LoadFromPath(opts.trace, opts.follow)
	}
	return nil
}

func loop(w *app.Window, cfg config.Config, opts options, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bundle := backend.NewBundle(ctx, logger)
	bundle.Datasource.FeedArgs = opts.feedArgs
	bundle.Datasource.RecordDir = opts.record
	defer bundle.Datasource.Stop()
	ws := backend.NewWindowState(ctx, bundle, w)
	expl := explorer.NewExplorer(w)

	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()), text.NoSystemFonts())
	ui := NewUI(ws, expl, cfg, th, logger.With().Str("component", "ui").Logger())

	if err := start(bundle.Datasource, opts); err != nil {
		logger.Error().Err(err).Msg("failed opening startup trace")
	}

	var ops op.Ops
	for {
		ev := w.NextEvent()
		expl.ListenEvents(ev)
		switch ev := ev.(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, ev)
			ui.Layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}
