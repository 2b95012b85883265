package telemetry

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testConfig() Config {
	return Config{
		ServiceName:    "rmaflow-test",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

func setupTelemetryWithTracing(t *testing.T) (*Telemetry, func()) {
	t.Helper()

	cfg := testConfig()
	cfg.EnableTracing = true

	tel, err := Initialize(context.Background(), cfg, WithTraceExporter(NewDiscardExporter()))
	if err != nil {
		t.Fatalf("failed to initialize telemetry: %v", err)
	}
	return tel, shutdownFunc(t, tel)
}

func setupTelemetryWithMetrics(t *testing.T) (*Telemetry, func()) {
	t.Helper()

	cfg := testConfig()
	cfg.EnableMetrics = true

	tel, err := Initialize(context.Background(), cfg, WithMetricExporter(NewDiscardExporter()))
	if err != nil {
		t.Fatalf("failed to initialize telemetry: %v", err)
	}
	return tel, shutdownFunc(t, tel)
}

func shutdownFunc(t *testing.T, tel *Telemetry) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(ctx); err != nil {
			t.Errorf("shutdown failed: %v", err)
		}
	}
}

// setupTracerProvider installs an in-memory tracer provider until cleanup runs.
func setupTracerProvider(t *testing.T) (*tracetest.InMemoryExporter, func()) {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)

	return exp, func() {
		otel.SetTracerProvider(nil)
	}
}
