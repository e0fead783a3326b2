package handler

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/daykey"
	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/quota"
	"github.com/AccelByte/extend-progression-engine/pkg/rule"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
	"github.com/AccelByte/extend-progression-engine/pkg/signal"
)

// testNow is 2025-03-01 10:00 in UTC+7
var testNow = time.Date(2025, 3, 1, 3, 0, 0, 0, time.UTC)

// setupTestPipeline creates a complete test pipeline with a miniredis backed store
// and one xp achievement worth 5 XP.
func setupTestPipeline(t *testing.T) *pipeline.Manager {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := service.NewRedisStore(client, service.RedisStoreConfig{})
	tables := progression.DefaultTables()
	cal := daykey.Default()
	clock := func() time.Time { return testNow }

	processor := signal.NewProcessor(store, tables, cal, clock, "test-namespace")

	ruleRegistry := rule.NewRegistry()
	err := rule.RegisterRules(ruleRegistry, []rule.RuleConfig{
		{ID: "first_steps", Type: "xp", Enabled: true, XPBonus: 5, Parameters: map[string]interface{}{"xp": 10}},
	}, tables)
	if err != nil {
		t.Fatalf("failed to register rules: %v", err)
	}

	tracker := quota.NewTracker(store, store, cal, quota.TrackerConfig{Clock: clock})
	executor := action.NewExecutor(action.NewRegistry())

	return pipeline.NewManager(store, processor, rule.NewEngine(ruleRegistry), executor, tracker, nil)
}

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewRouter(setupTestPipeline(t), RouterConfig{})
}
