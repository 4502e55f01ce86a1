package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/julienandreu/switchboard/internal/actuator"
	"github.com/julienandreu/switchboard/internal/config"
	"github.com/julienandreu/switchboard/internal/config/cell"
	"github.com/julienandreu/switchboard/internal/config/resolver"
	"github.com/julienandreu/switchboard/internal/config/source"
	"github.com/julienandreu/switchboard/internal/proxy"
	"github.com/julienandreu/switchboard/internal/routing"
	"github.com/julienandreu/switchboard/internal/server"
	"github.com/julienandreu/switchboard/pkg/logger"
	"github.com/julienandreu/switchboard/pkg/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the proxy server",
	RunE:  runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("backend", "", "Config source backend: yaml, json, toml, postgres, sqlite, redis, mongodb, dynamodb (inferred from --source's extension when omitted)")
	flags.String("source", "switchboard.yaml", "Path (file backends) or DSN/address (database backends)")
	flags.String("fallback-backend", "", "Optional fallback backend, consulted when the primary source fails")
	flags.String("fallback-source", "", "Optional fallback location")
	flags.String("namespace", "default", "Config namespace (database backends)")
	flags.String("addr", ":8080", "Address the proxy listens on")
	flags.String("actuator-addr", "", "Address the actuator endpoints listen on; empty disables the actuator")
	flags.Duration("poll-interval", cell.DefaultInterval, "Config change poll interval")
	flags.Int64("max-body-bytes", server.DefaultMaxBodyBytes, "Maximum accepted request body size")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "json", "Log format: json, text")

	_ = viper.BindPFlags(flags)
	viper.SetEnvPrefix("switchboard")
	viper.AutomaticEnv()
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	levelVar := new(slog.LevelVar)
	levelVar.Set(logger.ParseLevel(viper.GetString("log-level")))
	log := logger.New(logger.Config{Level: viper.GetString("log-level"), Format: viper.GetString("log-format")})

	primary, err := buildSource(ctx, viper.GetString("backend"), viper.GetString("source"), viper.GetString("namespace"))
	if err != nil {
		return err
	}

	var fallback source.Source
	if viper.GetString("fallback-backend") != "" {
		fallback, err = buildSource(ctx, viper.GetString("fallback-backend"), viper.GetString("fallback-source"), viper.GetString("namespace"))
		if err != nil {
			return err
		}
	}

	res := resolver.New(primary, fallback, log)

	cfg, version, err := res.LoadWithFallback(ctx)
	if err != nil {
		return err
	}

	initial := &config.Loaded{
		Config:     *cfg,
		Version:    version,
		SourceName: res.PrimaryName(),
		Namespace:  viper.GetString("namespace"),
		LoadedAt:   time.Now(),
	}
	liveCell := cell.New(initial)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	refresher := cell.NewRefresher(liveCell, res, viper.GetDuration("poll-interval"), log, m.ConfigReloadsTotal.Inc)
	go refresher.Run(ctx)

	engine := proxy.NewEngine(&http.Client{}, log, nil)
	matchCache := routing.NewCache(1000)
	srv := server.New(liveCell, matchCache, engine, log, m, viper.GetInt64("max-body-bytes"))

	httpServer := &http.Server{
		Addr:    viper.GetString("addr"),
		Handler: srv.Handler(),
	}

	var actuatorServer *http.Server
	if addr := viper.GetString("actuator-addr"); addr != "" {
		act := actuator.New(liveCell, levelVar, http.HandlerFunc(srv.ServeHealth))
		mux := http.NewServeMux()
		mux.Handle("/", act.Handler())
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		actuatorServer = &http.Server{Addr: addr, Handler: mux}
		go func() {
			if err := actuatorServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("actuator server failed", "error", err)
			}
		}()
	}

	go func() {
		log.Info("switchboard listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if actuatorServer != nil {
		_ = actuatorServer.Shutdown(shutdownCtx)
	}

	return nil
}
