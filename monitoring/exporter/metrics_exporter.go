package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tablestore/pkg/bench"
	"tablestore/pkg/logging"
	"tablestore/pkg/metrics"
)

// startWorkload keeps the I/O counters moving: it runs the full strategy
// matrix against scratch tables on a fixed interval so the exported
// metrics always reflect a live engine.
func startWorkload(cfg bench.Config, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if _, err := bench.RunMatrix(context.Background(), cfg); err != nil {
				log.Printf("workload matrix failed: %v", err)
			}
		}
	}()
}

func main() {
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "/app/data"
	}

	logDir := filepath.Clean(os.Getenv("LOG_DIR"))
	if logDir == "." {
		logDir = "/app/logs"
	}

	metricsPort := os.Getenv("METRICS_PORT")
	if metricsPort == "" {
		metricsPort = "8080"
	}

	rows := uint64(1000)
	if r := os.Getenv("BENCH_ROWS"); r != "" {
		_, _ = fmt.Sscanf(r, "%d", &rows)
	}

	_ = os.MkdirAll(dataDir, 0o750)
	_ = os.MkdirAll(logDir, 0o750)

	if err := logging.Init(logging.Config{
		Level:      logging.LevelInfo,
		OutputPath: filepath.Join(logDir, "exporter.log"),
		Format:     "json",
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.Close()

	log.Printf("Starting tablestore metrics exporter...")
	log.Printf("Data Directory: %s, Rows per table: %d", dataDir, rows)
	log.Printf("Metrics Port: %s", metricsPort)

	startWorkload(bench.Config{DataDir: dataDir, Rows: rows}, 30*time.Second)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	})

	srv := &http.Server{
		Addr:         ":" + metricsPort,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Metrics available at http://localhost:%s/metrics", metricsPort)
	log.Fatal(srv.ListenAndServe())
}
