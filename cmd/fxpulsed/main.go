// Command fxpulsed serves the tracked exchange rate over HTTP, backed by the
// tiered cache and the resilience pipeline around the remote source.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fxpulse/fxpulse"
	"github.com/fxpulse/fxpulse/config"
	"github.com/fxpulse/fxpulse/freshness"
	"github.com/fxpulse/fxpulse/logging"
	"github.com/fxpulse/fxpulse/probe"
	"github.com/fxpulse/fxpulse/source"
	"github.com/fxpulse/fxpulse/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logging.Setup(logging.Config{})
		fallback.Fatal().Err(err).Msg("load configuration")
	}

	log := logging.Setup(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("fxpulsed exited")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TraceStdout {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return err
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
		otel.SetTracerProvider(tp)
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	fresh := freshness.NewEngine(freshness.DefaultConfig())

	memory, err := store.NewMemory(cfg.MemoryMaxEntries)
	if err != nil {
		return err
	}
	tiers := []store.Tier{memory}

	if cfg.SQLitePath != "" {
		local, err := store.OpenLocal(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer func() { _ = local.Close() }()
		tiers = append(tiers, local)
	}
	if cfg.RedisAddr != "" {
		synced := store.NewSynced(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = synced.Close() }()
		tiers = append(tiers, synced)
	}

	tiered := store.NewTiered(fresh, logging.Component("store"), tiers...)
	src := source.NewHTTPClient(cfg.SourceURL, cfg.Pair, nil)

	opts := []fxpulse.Option{
		fxpulse.WithLogger(logging.Component("service")),
		fxpulse.WithFetchTimeout(cfg.FetchTimeout),
		fxpulse.WithFetchLimit(1, 2),
	}
	if cfg.ProbeAddr != "" {
		opts = append(opts, fxpulse.WithProbe(probe.Dialer{Addr: cfg.ProbeAddr}))
	}

	svc := fxpulse.New(cfg.Pair, tiered, src, fresh, opts...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /rate", func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.Lookup(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Freshness", result.Freshness.String())
		_ = json.NewEncoder(w).Encode(result)
	})
	mux.HandleFunc("POST /cache/clear", func(w http.ResponseWriter, r *http.Request) {
		svc.ClearCache(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("pair", cfg.Pair).Msg("fxpulsed listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
