package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"infinite-experiment/clanhall/internal/api"
	"infinite-experiment/clanhall/internal/config"
	"infinite-experiment/clanhall/internal/logging"
	"infinite-experiment/clanhall/internal/routes"
	"infinite-experiment/clanhall/internal/tracing"
)

// @title Clanhall API
// @version 1.0
// @description Clan membership backend for the Discord bot.
// @host localhost:8080
// @BasePath /
func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	specs, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if err := logging.Init(specs.AppEnv, specs.LogLevel); err != nil {
		log.Fatalf("❌ Failed to initialize logger: %v", err)
	}
	defer logging.Close()

	logging.Info("Clanhall starting up",
		"environment", specs.AppEnv,
		"store_backend", specs.StoreBackend,
		"timestamp", time.Now().Format(time.RFC3339),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, "clanhall", specs.OtelEndpoint)
	if err != nil {
		logging.Fatal("Failed to set up tracing", "error", err)
	}

	deps, err := api.InitDependencies(ctx, specs, prometheus.DefaultRegisterer)
	if err != nil {
		logging.Fatal("Failed to initialize dependencies", "error", err)
	}

	router := routes.RegisterRoutes(deps)

	// Setup metrics endpoint outside of Chi router
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", otelhttp.NewHandler(router, "clanhall"))

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(specs.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Info("Server starting", "port", specs.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		deps.Services.Repair.RunScheduled(gctx, specs.RepairInterval)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.Error("Server shutdown failed", "error", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logging.Warn("Tracer shutdown failed", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logging.Error("Server stopped with error", "error", err)
	}
	if err := deps.Close(); err != nil {
		logging.Warn("Failed to close dependencies", "error", err)
	}
}
