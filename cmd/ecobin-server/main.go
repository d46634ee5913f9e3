// EcoBin server - accounts, reward tokens, market, and the reward API.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecobin/ecobin/internal/config"
	"github.com/ecobin/ecobin/internal/log"
	"github.com/ecobin/ecobin/pkg/store"
	"github.com/ecobin/ecobin/pkg/web"
)

func main() {
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log.Init(*logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var st web.Store
	if dsn := config.DatabaseURL(); dsn != "" {
		pg, err := store.NewPG(ctx, dsn)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pg.Close()
		st = pg
		log.Info("using postgres storage")
	} else {
		st = store.NewMemory()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	srv, err := web.NewServer(web.Config{
		Addr:     config.ListenAddr(),
		APIToken: config.APIToken(),
		BaseURL:  config.ServerURL(),
		QRDir:    config.QRDir(),
	}, st)
	if err != nil {
		log.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	if err := srv.EnsureAdmin(ctx, config.AdminUsername(), config.AdminEmail(), config.AdminPassword()); err != nil {
		log.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	go func() {
		<-sigChan
		log.Info("shutting down")
		srv.Shutdown()
		cancel()
	}()

	log.Info("ecobin server listening", "addr", config.ListenAddr())
	if err := srv.Start(); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
