package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"

	"github.com/meltforce/liftlog/internal/cloud"
	"github.com/meltforce/liftlog/internal/config"
	"github.com/meltforce/liftlog/internal/logging"
	"github.com/meltforce/liftlog/internal/mcp"
	"github.com/meltforce/liftlog/internal/persist"
	"github.com/meltforce/liftlog/internal/prefs"
	"github.com/meltforce/liftlog/internal/server"
	"github.com/meltforce/liftlog/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// timerSweepInterval is how often expired rest timers are dropped.
const timerSweepInterval = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(cfg.Logging)
	defer logCloser.Close()
	log.Info("LiftLog starting", "version", Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cloud mirror
	kv, err := cloud.New(ctx, cfg.Cloud, log)
	if err != nil {
		log.Error("failed to open cloud backend", "backend", cfg.Cloud.Backend, "error", err)
		os.Exit(1)
	}
	defer kv.Close()
	log.Info("cloud backend ready", "backend", cfg.Cloud.Backend, "namespace", cfg.Cloud.Namespace)

	// Store and autosave
	st := store.New(store.WithLogger(log))
	syncer := persist.New(st, persist.FileStore{Path: cfg.Data.Path()}, kv,
		persist.WithDebounce(cfg.Autosave.Debounce),
		persist.WithKey(cfg.Cloud.Key),
		persist.WithLogger(log),
	)
	// Started first so the loaded state, including any cloud overlay, is saved back.
	syncer.Start(ctx)
	syncer.Load(ctx)
	log.Info("data loaded", "path", cfg.Data.Path(), "workouts", len(st.Workouts()))

	pm := prefs.Open(cfg.Data.PreferencesPath(), log)
	pm.OnChange(func(p prefs.Preferences) {
		log.Info("preferences changed", "theme", p.Theme, "biometrics", p.PrefersBiometrics)
	})

	// Create server
	srv := server.New(st, syncer, kv, pm, cfg.Auth.APIKey, log)
	srv.SetExportPath(cfg.Data.ExportPath())
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcp.New(mcp.StoreSource{Store: st}, Version, log)))

	// Listen on tsnet or plain TCP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	go sweepTimers(ctx, st)

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	syncer.Stop()
	if err := syncer.Flush(shutdownCtx); err != nil {
		log.Error("final save failed", "error", err)
	}
	log.Info("server stopped")
}

// sweepTimers drops expired rest timers until ctx is done.
func sweepTimers(ctx context.Context, st *store.Store) {
	ticker := time.NewTicker(timerSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.RemoveExpiredTimers()
		}
	}
}
