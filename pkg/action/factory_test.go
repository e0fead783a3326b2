package action_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/AccelByte/extend-progression-engine/pkg/action"
	actionBuiltin "github.com/AccelByte/extend-progression-engine/pkg/action/builtin"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
	"github.com/AccelByte/extend-progression-engine/pkg/service/mock"
)

func init() {
	// Register builtin actions for all tests
	actionBuiltin.RegisterActions(service.NewDependencies())
}

func TestBuild_GrantItem(t *testing.T) {
	deps := service.NewDependencies().WithGrantEntitlementService(&mock.EntitlementGranter{})
	actionBuiltin.RegisterActions(deps)

	config := action.ActionConfig{
		ID:      "grant_badge",
		Type:    actionBuiltin.GrantItemActionID,
		Enabled: true,
		Parameters: map[string]interface{}{
			"item_id":  "badge",
			"quantity": 1,
		},
	}

	act, err := action.Build(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if act == nil {
		t.Fatal("Expected non-nil action")
	}

	if act.ID() != config.ID {
		t.Errorf("Expected action ID '%s', got '%s'", config.ID, act.ID())
	}

	if act.Name() != "Grant Item" {
		t.Errorf("Expected action name 'Grant Item', got '%s'", act.Name())
	}
}

func TestBuild_UpdateStat(t *testing.T) {
	config := action.ActionConfig{
		ID:         "count_unlocks",
		Type:       actionBuiltin.UpdateStatActionID,
		Enabled:    true,
		Parameters: map[string]interface{}{"stat_code": "achievements-unlocked"},
	}

	act, err := action.Build(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if act.Name() != "Update Statistic" {
		t.Errorf("Expected action name 'Update Statistic', got '%s'", act.Name())
	}
}

func TestBuild_Disabled(t *testing.T) {
	config := action.ActionConfig{
		ID:      "announce",
		Type:    actionBuiltin.LogUnlockActionID,
		Enabled: false,
	}

	act, err := action.Build(config)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if act != nil {
		t.Error("Expected nil action for disabled config")
	}
}

func TestBuild_UnknownType(t *testing.T) {
	config := action.ActionConfig{
		ID:      "unknown",
		Type:    "send_carrier_pigeon",
		Enabled: true,
	}

	_, err := action.Build(config)
	if !errors.Is(err, action.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown action type, got %v", err)
	}
}

func TestBuildAll_CollectsErrors(t *testing.T) {
	configs := []action.ActionConfig{
		{ID: "announce", Type: actionBuiltin.LogUnlockActionID, Enabled: true},
		{ID: "bad_grant", Type: actionBuiltin.GrantItemActionID, Enabled: true},
		{ID: "unknown", Type: "unknown", Enabled: true},
		{ID: "bad_retry", Type: actionBuiltin.LogUnlockActionID, Enabled: true, Retry: &action.RetryConfig{MaxAttempts: -1}},
	}

	actions, err := action.BuildAll(configs)

	if len(actions) != 1 {
		t.Errorf("Expected 1 action, got %d", len(actions))
	}
	if !errors.Is(err, action.ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
	for _, id := range []string{"bad_grant", "unknown", "bad_retry"} {
		if !strings.Contains(err.Error(), "action "+id) {
			t.Errorf("Expected error to mention %s: %v", id, err)
		}
	}
}

func TestRegisterActions(t *testing.T) {
	registry := action.NewRegistry()

	configs := []action.ActionConfig{
		{ID: "announce", Type: actionBuiltin.LogUnlockActionID, Enabled: true},
		{
			ID:         "grant_badge",
			Type:       actionBuiltin.GrantItemActionID,
			Enabled:    true,
			Parameters: map[string]interface{}{"item_id": "badge"},
		},
	}

	if err := action.RegisterActions(registry, configs); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if registry.Count() != 2 {
		t.Errorf("Expected 2 registered actions, got %d", registry.Count())
	}
}

func TestRegisterActions_DuplicateID(t *testing.T) {
	registry := action.NewRegistry()

	configs := []action.ActionConfig{
		{ID: "announce", Type: actionBuiltin.LogUnlockActionID, Enabled: true},
		{ID: "announce", Type: actionBuiltin.LogUnlockActionID, Enabled: true},
	}

	if err := action.RegisterActions(registry, configs); err == nil {
		t.Error("Expected error for duplicate action ID")
	}
}
