// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/AccelByte/extend-progression-engine/pkg/common"
)

// SetupTelemetry installs the global tracer provider and propagators and
// returns the function that flushes pending spans on shutdown.
//
// ============================================================
// DEVELOPER: OpenTelemetry configuration
// ============================================================
// ZIPKIN_ENDPOINT: Zipkin collector; empty traces without exporting.
// TRACE_SAMPLE_RATIO: fraction of root spans kept (0-1).
//
// Incoming trace context is accepted as B3 (Zipkin) or W3C
// TraceContext, plus W3C Baggage. Engine spans are opened via
// common.GetScopeFromContext.
// ============================================================
func SetupTelemetry(ctx context.Context, cfg common.TracerConfig) (func(context.Context) error, error) {
	tracerProvider, err := common.NewTracerProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer provider: %w", err)
	}

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			b3.New(b3.WithInjectEncoding(b3.B3MultipleHeader)),
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		logrus.Warnf("opentelemetry: %v", err)
	}))

	logrus.WithFields(logrus.Fields{
		"service":     cfg.ServiceName,
		"environment": cfg.Environment,
		"exporting":   cfg.ZipkinEndpoint != "",
		"sampleRatio": cfg.SampleRatio,
	}).Info("telemetry configured")

	return func(ctx context.Context) error {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to flush spans: %w", err)
		}
		logrus.Info("telemetry stopped")
		return nil
	}, nil
}
