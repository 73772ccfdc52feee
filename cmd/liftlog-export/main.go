package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/meltforce/liftlog/internal/cloud"
	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/export"
	"github.com/meltforce/liftlog/internal/logging"
	"github.com/meltforce/liftlog/internal/persist"
	"github.com/meltforce/liftlog/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	out := flag.String("out", "", "output CSV path (default: workouts.csv next to the data file)")
	withCloud := flag.Bool("cloud", false, "overlay the cloud copy before exporting")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-export", Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(cfg.Logging)
	defer logCloser.Close()

	ctx := context.Background()
	var kv cloud.KV = cloud.Noop{}
	if *withCloud {
		kv, err = cloud.New(ctx, cfg.Cloud, log)
		if err != nil {
			log.Error("failed to open cloud backend", "error", err)
			os.Exit(1)
		}
		defer kv.Close()
	}

	st := store.New(store.WithLogger(log))
	persist.New(st, persist.FileStore{Path: cfg.Data.Path()}, kv,
		persist.WithKey(cfg.Cloud.Key),
		persist.WithLogger(log),
	).Load(ctx)

	path := *out
	if path == "" {
		path = cfg.Data.ExportPath()
	}

	sessions := st.Workouts()
	if err := export.WriteFile(path, sessions, time.Local); err != nil {
		log.Error("export failed", "path", path, "error", err)
		os.Exit(1)
	}
	log.Info("export written", "path", path, "workouts", len(sessions))
}
