package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AccelByte/extend-progression-engine/pkg/service"
	"github.com/AccelByte/extend-progression-engine/pkg/service/mock"
)

func TestCachedTierLookup_CachesHits(t *testing.T) {
	next := &mock.TierLookup{Tiers: map[string]service.Tier{"u1": service.Tier2}}
	lookup, err := service.NewCachedTierLookup(next, 16, time.Minute)
	if err != nil {
		t.Fatalf("NewCachedTierLookup() error = %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		tier, err := lookup.GetTier(ctx, "u1")
		if err != nil {
			t.Fatalf("GetTier() error = %v", err)
		}
		if tier != service.Tier2 {
			t.Errorf("GetTier() = %s, expected tier2", tier)
		}
	}
	if next.CallCount() != 1 {
		t.Errorf("backend calls = %d, expected 1", next.CallCount())
	}

	lookup.Invalidate("u1")
	if _, err := lookup.GetTier(ctx, "u1"); err != nil {
		t.Fatalf("GetTier() error = %v", err)
	}
	if next.CallCount() != 2 {
		t.Errorf("backend calls after invalidate = %d, expected 2", next.CallCount())
	}
}

func TestCachedTierLookup_ExpiresEntries(t *testing.T) {
	next := &mock.TierLookup{}
	lookup, err := service.NewCachedTierLookup(next, 16, time.Nanosecond)
	if err != nil {
		t.Fatalf("NewCachedTierLookup() error = %v", err)
	}

	ctx := context.Background()
	_, _ = lookup.GetTier(ctx, "u1")
	time.Sleep(time.Millisecond)
	_, _ = lookup.GetTier(ctx, "u1")

	if next.CallCount() != 2 {
		t.Errorf("backend calls = %d, expected 2", next.CallCount())
	}
}

func TestCachedTierLookup_DoesNotCacheErrors(t *testing.T) {
	next := &mock.TierLookup{Error: errors.New("tier service down")}
	lookup, err := service.NewCachedTierLookup(next, 16, time.Minute)
	if err != nil {
		t.Fatalf("NewCachedTierLookup() error = %v", err)
	}

	ctx := context.Background()
	if _, err := lookup.GetTier(ctx, "u1"); err == nil {
		t.Fatal("GetTier() expected error")
	}

	next.Error = nil
	tier, err := lookup.GetTier(ctx, "u1")
	if err != nil {
		t.Fatalf("GetTier() error = %v", err)
	}
	if tier != service.TierFree {
		t.Errorf("GetTier() = %s, expected free", tier)
	}
}

func TestParseTier(t *testing.T) {
	cases := map[string]service.Tier{"": service.TierFree, "FREE": service.TierFree, " tier3 ": service.Tier3}
	for in, expected := range cases {
		got, err := service.ParseTier(in)
		if err != nil || got != expected {
			t.Errorf("ParseTier(%q) = %s, %v; expected %s", in, got, err, expected)
		}
	}
	if _, err := service.ParseTier("platinum"); err == nil {
		t.Error("ParseTier(platinum) expected error")
	}
}
