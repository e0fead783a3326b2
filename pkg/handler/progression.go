// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AccelByte/extend-progression-engine/pkg/common"
	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
	"github.com/AccelByte/extend-progression-engine/pkg/progression"
	"github.com/AccelByte/extend-progression-engine/pkg/quota"
)

// Progression serves the engine operations over HTTP
type Progression struct {
	pipelineManager *pipeline.Manager
}

// NewProgression creates a new progression handler
func NewProgression(pipelineManager *pipeline.Manager) *Progression {
	return &Progression{pipelineManager: pipelineManager}
}

type recordEventRequest struct {
	ID         string     `json:"id"`
	Category   string     `json:"category" binding:"required"`
	OccurredAt *time.Time `json:"occurredAt"`
}

type setTargetsRequest struct {
	DayKey       string `json:"dayKey"`
	Actions      int    `json:"actions"`
	Affirmations int    `json:"affirmations"`
	Habits       int    `json:"habits"`
}

type goalProgressRequest struct {
	Percent *int `json:"percent" binding:"required"`
}

type setTierRequest struct {
	Tier string `json:"tier" binding:"required"`
}

// RecordEvent handles POST /v1/users/:userId/events
func (h *Progression) RecordEvent(c *gin.Context) {
	scope := common.GetScopeFromContext(c.Request.Context(), "Progression.RecordEvent")
	defer scope.Finish()

	var req recordEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	in := pipeline.RecordEventInput{
		UserID:   c.Param(ParamUserID),
		ID:       req.ID,
		Category: req.Category,
	}
	if req.OccurredAt != nil {
		in.OccurredAt = *req.OccurredAt
	}

	result, err := h.pipelineManager.RecordEvent(scope.Ctx, in)
	if err != nil {
		WriteError(c, err)
		return
	}

	status := http.StatusCreated
	if !result.Inserted {
		status = http.StatusOK
	}
	Respond(c, status, CodeSuccess, "success", result)
}

// GetTodaySummary handles GET /v1/users/:userId/summary
func (h *Progression) GetTodaySummary(c *gin.Context) {
	stats, err := h.pipelineManager.GetTodaySummary(c.Request.Context(), c.Param(ParamUserID))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, stats)
}

// GetProgressLedger handles GET /v1/users/:userId/ledger
func (h *Progression) GetProgressLedger(c *gin.Context) {
	ledger, err := h.pipelineManager.GetProgressLedger(c.Request.Context(), c.Param(ParamUserID))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, ledger)
}

// TryConsumeQuota handles POST /v1/users/:userId/quota/consume.
// A denied scan is a 200 with code 42901; a failed check is a 503 and must be treated as denied.
func (h *Progression) TryConsumeQuota(c *gin.Context) {
	res, err := h.pipelineManager.TryConsumeQuota(c.Request.Context(), c.Param(ParamUserID))
	if err != nil {
		if errors.Is(err, quota.ErrConsumeFailed) {
			Respond(c, http.StatusServiceUnavailable, CodeStoreUnavailable,
				"quota check failed, scan not allowed", quota.Result{Allowed: false})
			return
		}
		WriteError(c, err)
		return
	}

	if !res.Allowed {
		Respond(c, http.StatusOK, CodeQuotaExhausted, "daily scan limit reached", res)
		return
	}
	Success(c, res)
}

// GetQuotaStatus handles GET /v1/users/:userId/quota
func (h *Progression) GetQuotaStatus(c *gin.Context) {
	res, err := h.pipelineManager.GetQuotaStatus(c.Request.Context(), c.Param(ParamUserID))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, res)
}

// GetNewlyUnlockedAchievements handles GET /v1/users/:userId/achievements/new
func (h *Progression) GetNewlyUnlockedAchievements(c *gin.Context) {
	unlocks, err := h.pipelineManager.GetNewlyUnlockedAchievements(c.Request.Context(), c.Param(ParamUserID))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, unlocks)
}

// SetDailyTargets handles PUT /v1/users/:userId/targets
func (h *Progression) SetDailyTargets(c *gin.Context) {
	var req setTargetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	stats, err := h.pipelineManager.SetDailyTargets(c.Request.Context(), c.Param(ParamUserID), req.DayKey, progression.Targets{
		Actions:      req.Actions,
		Affirmations: req.Affirmations,
		Habits:       req.Habits,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, stats)
}

// UpdateGoalProgress handles PUT /v1/users/:userId/goals/:goalId
func (h *Progression) UpdateGoalProgress(c *gin.Context) {
	var req goalProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	unlocks, err := h.pipelineManager.UpdateGoalProgress(c.Request.Context(), c.Param(ParamUserID), c.Param(ParamGoalID), *req.Percent)
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, unlocks)
}

// SetTier handles PUT /v1/users/:userId/tier
func (h *Progression) SetTier(c *gin.Context) {
	var req setTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	if err := h.pipelineManager.SetTier(c.Request.Context(), c.Param(ParamUserID), req.Tier); err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"tier": req.Tier})
}

// Recompute handles POST /v1/users/:userId/recompute.
// It rebuilds derived progress from the event log and retries achievement evaluation.
func (h *Progression) Recompute(c *gin.Context) {
	unlocks, err := h.pipelineManager.Recompute(c.Request.Context(), c.Param(ParamUserID))
	if err != nil {
		WriteError(c, err)
		return
	}
	Success(c, gin.H{"newUnlocks": unlocks})
}

// GetLevelTable handles GET /v1/levels
func (h *Progression) GetLevelTable(c *gin.Context) {
	Success(c, h.pipelineManager.GetLevelTable())
}
