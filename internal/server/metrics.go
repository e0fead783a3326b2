// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-progression-engine/pkg/metrics"
)

// MetricsServer exposes the engine's Prometheus registry on its own port.
type MetricsServer struct {
	server   *http.Server
	registry *prometheus.Registry
	port     int
	endpoint string
}

func NewMetricsServer(port int, endpoint string) *MetricsServer {
	return &MetricsServer{
		port:     port,
		endpoint: endpoint,
	}
}

// Setup builds a private registry with runtime collectors and the engine metrics.
//
// ============================================================
// DEVELOPER: Engine metrics live in pkg/metrics
// ============================================================
// To add a metric, define it in pkg/metrics and append it to
// metrics.Collectors(); it is registered here automatically.
// The scrape handler itself is instrumented, so failed scrapes
// show up as promhttp_metric_handler_requests_total{code="500"}.
// ============================================================
func (m *MetricsServer) Setup() error {
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)

	if err := metrics.Register(m.registry); err != nil {
		return fmt.Errorf("failed to register engine metrics: %w", err)
	}

	scrape := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:          logrus.StandardLogger(),
		EnableOpenMetrics: true,
	})

	mux := http.NewServeMux()
	mux.Handle(m.endpoint, promhttp.InstrumentMetricHandler(m.registry, scrape))

	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", m.port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return nil
}

func (m *MetricsServer) Start(ctx context.Context) error {
	return listenAndServe("metrics", m.server)
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return shutdownHTTP("metrics", m.server, ctx)
}
