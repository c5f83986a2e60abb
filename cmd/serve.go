package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pitwall-sim/pitwall/internal/observability"
	"github.com/pitwall-sim/pitwall/internal/server"
	"github.com/pitwall-sim/pitwall/sim"
	"github.com/pitwall-sim/pitwall/sim/catalog"
)

var (
	// CLI flags for the HTTP server
	listenAddr       string        // Address to listen on
	readTimeout      time.Duration // Per-request read timeout
	tracingExporter  string        // none | stdout | otlp
	otlpEndpoint     string        // OTLP/gRPC collector address
	traceSampleRatio float64       // Fraction of traces sampled
)

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the simulation API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	if !observability.IsValidExporter(tracingExporter) {
		return fmt.Errorf("unknown tracing exporter %q; valid exporters: none, stdout, otlp", tracingExporter)
	}

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return err
	}

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
		Exporter:    tracingExporter,
		ServiceName: "pitwall",
		Endpoint:    otlpEndpoint,
		SampleRatio: traceSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdown)

	collector, err := observability.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	srv := server.New(sim.NewSimulator(cat), server.WithCollector(collector))
	logrus.Infof("serving catalog %q: %d tracks, %d drivers", cat.Version, len(cat.Tracks), len(cat.Drivers))
	return srv.ListenAndServe(ctx, listenAddr, readTimeout)
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8080", "Address to listen on")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 10*time.Second, "Per-request read timeout")
	serveCmd.Flags().StringVar(&tracingExporter, "tracing", "none", "Tracing exporter (none, stdout, otlp)")
	serveCmd.Flags().StringVar(&otlpEndpoint, "otlp-endpoint", "localhost:4317", "OTLP/gRPC collector address")
	serveCmd.Flags().Float64Var(&traceSampleRatio, "trace-sample-ratio", 1.0, "Fraction of traces sampled, in [0, 1]")

	rootCmd.AddCommand(serveCmd)
}
