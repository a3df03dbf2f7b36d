package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/joemeszaros/speleo-studio-sub003/internal/declination"
	"github.com/joemeszaros/speleo-studio-sub003/internal/httpapi"
	"github.com/joemeszaros/speleo-studio-sub003/internal/logging"
	"github.com/joemeszaros/speleo-studio-sub003/internal/observability"
	"github.com/joemeszaros/speleo-studio-sub003/internal/store"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	apiAddr := flag.String("api-addr", envOr("SPELEO_API_ADDR", ":8080"), "HTTP address the survey API listens on")
	metricsAddr := flag.String("metrics-addr", envOr("SPELEO_METRICS_ADDR", ":9090"), "HTTP address for Prometheus /metrics")
	dbPath := flag.String("db", envOr("SPELEO_DB_PATH", "speleo.db"), "Path to the SQLite cave database")
	origins := flag.String("allowed-origins", envOr("SPELEO_ALLOWED_ORIGINS", "*"), "Comma-separated CORS origins")
	declinationURL := flag.String("declination-url", envOr("SPELEO_DECLINATION_URL", declination.DefaultBaseURL), "Magnetic declination service base URL")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		os.Exit(1)
	}

	collector, err := observability.NewCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		os.Exit(1)
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Error(ctx, "failed to open cave database", logging.String("path", *dbPath), logging.Err(err))
		os.Exit(1)
	}
	defer st.Close()

	declService := declination.NewService(
		declination.NewClient(*declinationURL, log),
		st,
		log,
	)

	server := httpapi.New(st, collector, declService, log)

	apiSrv := &http.Server{
		Addr:    *apiAddr,
		Handler: server.Router(splitOrigins(*origins)),
	}

	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	log.Info(ctx, "starting survey API server",
		logging.String("addr", *apiAddr),
		logging.String("db", *dbPath),
	)
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "API server exited", logging.Err(err))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
}

func serveMetrics(addr string, collector *observability.Collector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
