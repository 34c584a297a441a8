// Package main boots the warehouse inventory monitor.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/bus"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/config"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/coordinator"
	httpapi "github.com/fairyhunter13/warehouse-inventory-monitor/internal/http"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/obs"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/orders"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/sim"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/sink"
	"github.com/fairyhunter13/warehouse-inventory-monitor/internal/store"
)

func main() {
	cfg := config.Load()
	obs.InitLogger()
	obs.Logger.Info("service_starting")
	if err := cfg.Validate(); err != nil {
		obs.Logger.Error("config_invalid", "error", err)
		os.Exit(1)
	}

	seed := make([]store.Entry, 0, len(cfg.Products))
	for _, p := range cfg.Products {
		seed = append(seed, store.Entry{Product: p.Name, Weight: p.Weight})
	}
	ledger := store.New(seed)
	consumer := sim.New(cfg.ConsumptionMin, cfg.ConsumptionMax, nil)
	book := orders.New(orders.Config{
		RefillMin: cfg.RefillMin,
		RefillMax: cfg.RefillMax,
		DelayMin:  cfg.FulfillDelayMin,
		DelayMax:  cfg.FulfillDelayMax,
	}, ledger, nil)

	rec, err := sink.OpenCSV(cfg.LogPath)
	if err != nil {
		obs.Logger.Error("sink_open_failed", "path", cfg.LogPath, "error", err)
		os.Exit(1)
	}

	conn := bus.NewMQTT(cfg.BrokerURL, cfg.ClientIDPrefix, cfg.ConnectTimeout)
	coord := coordinator.New(cfg, ledger, consumer, book, conn, rec)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coord.Start(ctx)

	if cfg.AutoConnect {
		if err := coord.Connect(); err != nil {
			// Stay up disconnected; the API can retry /connect later.
			obs.Logger.Warn("bus_connect_failed", "broker", cfg.BrokerURL, "error", err)
		}
	}

	app := httpapi.NewApp(cfg, coord)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Logger.Error("http_server_error", "error", err)
			os.Exit(1)
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigc
	obs.Logger.Info("shutdown_signal", "signal", s.String())

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err)
	}

	coord.Stop()
	conn.Disconnect()
	if err := rec.Close(); err != nil {
		obs.Logger.Error("sink_close_error", "error", err)
	}
	obs.Logger.Info("service_stopped")
}
