// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package service

import (
	"context"
	"fmt"

	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclient/fulfillment"
	"github.com/AccelByte/accelbyte-go-sdk/platform-sdk/pkg/platformclientmodels"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/platform"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/social"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclient/user_statistic"
	"github.com/AccelByte/accelbyte-go-sdk/social-sdk/pkg/socialclientmodels"
)

// PlatformRewards delivers achievement rewards to AccelByte: items through
// fulfillment and counters through user statistics. Both clients must share
// one authenticated token repository.
type PlatformRewards struct {
	namespace     string
	fulfillment   *platform.FulfillmentService
	userStatistic *social.UserStatisticService
}

var (
	_ EntitlementGranter = (*PlatformRewards)(nil)
	_ StatUpdater        = (*PlatformRewards)(nil)
)

func NewPlatformRewards(namespace string, items *platform.FulfillmentService, stats *social.UserStatisticService) *PlatformRewards {
	return &PlatformRewards{
		namespace:     namespace,
		fulfillment:   items,
		userStatistic: stats,
	}
}

// GrantEntitlement fulfills quantity of itemID as a reward.
func (p *PlatformRewards) GrantEntitlement(ctx context.Context, userID, itemID string, quantity int) error {
	if itemID == "" {
		return fmt.Errorf("item id is required")
	}
	if quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	qty := int32(quantity)

	resp, err := p.fulfillment.FulfillItemShort(&fulfillment.FulfillItemParams{
		Context:   ctx,
		Namespace: p.namespace,
		UserID:    userID,
		Body: &platformclientmodels.FulfillmentRequest{
			ItemID:   itemID,
			Quantity: &qty,
			Source:   platformclientmodels.FulfillmentRequestSourceREWARD,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to fulfill item %s for user %s: %w", itemID, userID, err)
	}
	if resp == nil {
		return fmt.Errorf("fulfill item %s for user %s: empty response", itemID, userID)
	}
	return nil
}

// IncrementStat adds inc to statCode for the user.
func (p *PlatformRewards) IncrementStat(ctx context.Context, userID, statCode string, inc float64) error {
	if statCode == "" {
		return fmt.Errorf("stat code is required")
	}

	_, err := p.userStatistic.IncUserStatItemValueShort(&user_statistic.IncUserStatItemValueParams{
		Context:   ctx,
		Namespace: p.namespace,
		UserID:    userID,
		StatCode:  statCode,
		Body:      &socialclientmodels.StatItemInc{Inc: inc},
	})
	if err != nil {
		return fmt.Errorf("failed to increment user %s statistic %s: %w", userID, statCode, err)
	}
	return nil
}
