package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

type downPinger struct{}

func (downPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestMetricsServer_Setup(t *testing.T) {
	m := NewMetricsServer(8080, "/metrics")
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	w := httptest.NewRecorder()
	m.server.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected runtime metrics in the output")
	}
}

func TestGRPCServer_RefreshHealth(t *testing.T) {
	ctx := context.Background()

	healthy := NewGRPCServer(6565, service.NewHealthChecker(service.NewMemoryStore()))
	if err := healthy.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if got := healthy.RefreshHealth(ctx); got != grpc_health_v1.HealthCheckResponse_SERVING {
		t.Errorf("expected SERVING, got %v", got)
	}

	down := NewGRPCServer(6565, service.NewHealthChecker(downPinger{}))
	if err := down.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if got := down.RefreshHealth(ctx); got != grpc_health_v1.HealthCheckResponse_NOT_SERVING {
		t.Errorf("expected NOT_SERVING, got %v", got)
	}
}

func TestMetricsServer_StartFailsOnTakenPort(t *testing.T) {
	lis, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	m := NewMetricsServer(lis.Addr().(*net.TCPAddr).Port, "/metrics")
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := m.Start(context.Background()); err == nil {
		t.Error("expected Start to fail on a taken port")
	}
}

func TestMetricsServer_StartShutdown(t *testing.T) {
	m := NewMetricsServer(0, "/metrics")
	if err := m.Setup(); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := m.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
