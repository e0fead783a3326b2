// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package handler

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
)

// RouterConfig holds the HTTP surface settings.
type RouterConfig struct {
	AllowedOrigins     []string
	RateLimitPerMinute int
	// Ready reports whether dependencies are reachable; nil means always ready.
	Ready func(c *gin.Context) error
}

// NewRouter wires middleware and the progression routes.
func NewRouter(pipelineManager *pipeline.Manager, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Ready != nil {
			if err := cfg.Ready(c); err != nil {
				Error(c, http.StatusServiceUnavailable, CodeStoreUnavailable, err.Error())
				return
			}
		}
		Success(c, gin.H{"status": "ok"})
	})

	h := NewProgression(pipelineManager)

	v1 := r.Group("/v1")
	if cfg.RateLimitPerMinute > 0 {
		v1.Use(NewRateLimiter(cfg.RateLimitPerMinute).Middleware())
	}

	v1.GET("/levels", h.GetLevelTable)

	users := v1.Group("/users/:" + ParamUserID)
	users.POST("/events", h.RecordEvent)
	users.GET("/summary", h.GetTodaySummary)
	users.GET("/ledger", h.GetProgressLedger)
	users.PUT("/targets", h.SetDailyTargets)
	users.PUT("/goals/:"+ParamGoalID, h.UpdateGoalProgress)
	users.GET("/achievements/new", h.GetNewlyUnlockedAchievements)
	users.GET("/quota", h.GetQuotaStatus)
	users.POST("/quota/consume", h.TryConsumeQuota)
	users.PUT("/tier", h.SetTier)
	users.POST("/recompute", h.Recompute)

	return r
}
