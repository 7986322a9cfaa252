package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/robfig/cron/v3"

	"schoolcal/internal/config"
	"schoolcal/internal/extras"
	"schoolcal/internal/ics"
	appLog "schoolcal/internal/log"
	"schoolcal/internal/store"
	"schoolcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	listen     string
	importPath string
	once       bool
	debug      bool
}

func main() {
	appLog.Info("schoolcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	// CLI --listen overrides the config file if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"data_dir", conf.DataDir,
		"refresh", conf.RefreshCron,
		"subscription", conf.ICSURL != "",
		"once", flags.once,
	)

	st, err := store.New(filepath.Join(conf.DataDir, "schoolcal.db"))
	if err != nil {
		appLog.Error("failed to open store", err, "data_dir", conf.DataDir)
		os.Exit(1)
	}
	defer st.Close()

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// One-shot import from a local ICS file.
	if flags.importPath != "" {
		if err := importFile(st, flags.importPath); err != nil {
			appLog.Error("import failed", err, "path", flags.importPath)
			os.Exit(1)
		}
		if flags.once {
			appLog.Info("schoolcal exiting after import")
			return
		}
	}

	// Periodic re-import of the ICS subscription.
	if conf.ICSURL != "" && conf.RefreshCron != "" {
		c := cron.New()
		fetcher := ics.NewFetcher(filepath.Join(conf.DataDir, "ics-cache"))
		_, err := c.AddFunc(conf.RefreshCron, func() {
			refreshSubscription(ctx, fetcher, st, conf.ICSURL)
		})
		if err != nil {
			appLog.Error("invalid refresh cron spec", err, "refresh", conf.RefreshCron)
			os.Exit(1)
		}
		c.Start()
		defer c.Stop()
		appLog.Info("subscription refresh scheduled", "refresh", conf.RefreshCron)
	}

	ex := extras.NewClient(extras.NewMemoryKV(), extras.Options{
		Proxies:      conf.Proxies,
		QuoteURL:     conf.Extras.QuoteURL,
		WordURL:      conf.Extras.WordURL,
		TermDatesURL: conf.Extras.TermDatesURL,
	})

	if err := web.StartServer(ctx, conf, st, ex, flags.debug); err != nil {
		appLog.Error("HTTP server stopped", err)
		os.Exit(1)
	}

	appLog.Info("schoolcal exiting")
}

// importFile runs the import pipeline on a local ICS file.
func importFile(st *store.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, _, _, err = web.ImportCalendar(st, string(data))
	return err
}

// refreshSubscription re-fetches the subscription and re-derives the
// template week. Failures are logged and retried on the next tick; the
// previously stored week stays in place.
func refreshSubscription(ctx context.Context, fetcher *ics.Fetcher, st *store.Store, url string) {
	res, err := fetcher.Fetch(ctx, url)
	if err != nil {
		appLog.Error("subscription fetch failed", err)
		return
	}
	if _, _, _, err := web.ImportCalendar(st, string(res.Body)); err != nil {
		appLog.Error("subscription import failed", err)
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/schoolcal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.importPath, "import", "", "Import a local ICS file before starting")
	flag.BoolVar(&cfg.once, "once", false, "With -import: import and exit without serving")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug paths and verbose logging")

	flag.Parse()

	return cfg
}
