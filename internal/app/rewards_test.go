package app_test

import (
	"context"
	"testing"

	"homestay/internal/app"
	"homestay/internal/domain"
)

func TestAward_TierBoundaries(t *testing.T) {
	cases := []struct {
		points int64
		want   domain.Tier
	}{
		{999, domain.TierBronze},
		{1000, domain.TierSilver},
		{1500, domain.TierGold},
		{2500, domain.TierPlatinum},
	}
	for _, tc := range cases {
		repo := newFakeRepo()
		svc := app.NewRewardService(repo)
		tier, _, err := svc.Award(context.Background(), 3, tc.points, domain.ReasonBookingCreated)
		if err != nil {
			t.Fatalf("award %d: %v", tc.points, err)
		}
		if tier != tc.want {
			t.Fatalf("%d points: got %s want %s", tc.points, tier, tc.want)
		}
	}
}

func TestAward_TierChangeAppendsMarker(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewRewardService(repo)
	ctx := context.Background()

	if _, changed, err := svc.Award(ctx, 3, 600, domain.ReasonBookingCreated); err != nil || changed {
		t.Fatalf("first award: changed=%v err=%v", changed, err)
	}
	tier, changed, err := svc.Award(ctx, 3, 600, domain.ReasonBookingCreated)
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if !changed || tier != domain.TierSilver {
		t.Fatalf("expected silver promotion, got %s changed=%v", tier, changed)
	}

	// ledger: 600 points, 600 points, zero-point marker
	if len(repo.ledger) != 3 {
		t.Fatalf("ledger entries: %d", len(repo.ledger))
	}
	marker := repo.ledger[2]
	if marker.Points != 0 || marker.Reason != domain.ReasonTierChange || marker.Tier != domain.TierSilver {
		t.Fatalf("marker entry: %+v", marker)
	}
}

func TestAward_SumIsLedgerDerived(t *testing.T) {
	repo := newFakeRepo()
	svc := app.NewRewardService(repo)
	ctx := context.Background()

	// Ten awards of 250 cross silver on the fourth and gold on the sixth.
	var changes int
	for i := 0; i < 10; i++ {
		if _, changed, err := svc.Award(ctx, 3, 250, domain.ReasonBookingCreated); err != nil {
			t.Fatalf("award %d: %v", i, err)
		} else if changed {
			changes++
		}
	}
	tier, changed, err := svc.Award(ctx, 3, 0, domain.ReasonBookingCreated)
	if err != nil || changed {
		t.Fatalf("zero award: changed=%v err=%v", changed, err)
	}
	if tier != domain.TierPlatinum { // 2500 total
		t.Fatalf("final tier: %s", tier)
	}
	if changes != 3 { // silver, gold, platinum
		t.Fatalf("tier changes: %d", changes)
	}
}
