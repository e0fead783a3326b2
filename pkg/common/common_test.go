package common

import (
	"context"
	"strings"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestInterceptorLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	InterceptorLogger(logger).Log(context.Background(), logging.LevelWarn, "finished call", "grpc.method", "Check")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level, got %v", entry.Level)
	}
	if entry.Data["grpc.method"] != "Check" {
		t.Errorf("expected grpc.method field, got %v", entry.Data)
	}
}

func TestScope_WithUser(t *testing.T) {
	logger, hook := test.NewNullLogger()

	scope := GetScopeFromContext(context.Background(), "test")
	defer scope.Finish()
	scope.SetLogger(logrus.NewEntry(logger))
	scope.WithUser("user-1").Log.Info("hello")

	entry := hook.LastEntry()
	if entry == nil || entry.Data["userID"] != "user-1" {
		t.Errorf("expected userID field, got %v", entry)
	}
}

func TestNewTracerProvider_WithoutEndpoint(t *testing.T) {
	tp, err := NewTracerProvider(TracerConfig{ServiceName: "progression-engine", Environment: "test", SampleRatio: 1})
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1, "root:AlwaysOnSampler"},
		{0, "root:AlwaysOffSampler"},
		{0.25, "root:TraceIDRatioBased"},
	}
	for _, tt := range tests {
		if got := sampler(tt.ratio).Description(); !strings.Contains(got, tt.want) {
			t.Errorf("sampler(%v) = %s, want it to contain %s", tt.ratio, got, tt.want)
		}
	}
}
