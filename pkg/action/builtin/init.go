package builtin

import (
	"github.com/AccelByte/extend-progression-engine/pkg/action"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// RegisterActions registers built-in action factories with dependencies.
// A nil deps, or nil services inside it, puts the reward actions in test mode.
func RegisterActions(deps *service.Dependencies) {
	if deps == nil {
		deps = service.NewDependencies()
	}

	action.RegisterType(GrantItemActionID, func(config action.ActionConfig) (action.Action, error) {
		return NewGrantItemAction(config, deps.GrantEntitlementService)
	})

	action.RegisterType(UpdateStatActionID, func(config action.ActionConfig) (action.Action, error) {
		return NewUpdateStatAction(config, deps.StatUpdateService)
	})

	action.RegisterType(LogUnlockActionID, func(config action.ActionConfig) (action.Action, error) {
		return NewLogUnlockAction(config), nil
	})
}
