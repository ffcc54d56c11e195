package app

import (
	"context"
	"errors"
	"fmt"

	"homestay/internal/domain"
)

// RewardService maintains the append-only points ledger. The current tier is
// never stored as mutable state: every award re-sums the full ledger and a
// tier-change marker row is appended only when the computed tier moved.
type RewardService struct {
	repo domain.Repository
}

func NewRewardService(r domain.Repository) *RewardService {
	return &RewardService{repo: r}
}

// Award appends a points entry for userID, recomputes the tier from the
// ledger sum, and records a zero-point tier-change entry when the tier
// differs from the most recent one on file. The returned bool reports whether
// the tier changed.
func (s *RewardService) Award(ctx context.Context, userID, points int64, reason string) (domain.Tier, bool, error) {
	prev, err := s.repo.LatestRewardTier(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", false, fmt.Errorf("latest tier for user %d: %w", userID, err)
		}
		prev = domain.TierBronze
	}

	if err := s.repo.AppendRewardEntry(ctx, domain.RewardEntry{
		UserID: userID,
		Points: points,
		Reason: reason,
		Tier:   prev,
	}); err != nil {
		return "", false, fmt.Errorf("append reward entry: %w", err)
	}

	total, err := s.repo.SumRewardPoints(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("sum reward points: %w", err)
	}
	cur := domain.TierFor(total)
	if cur == prev {
		return cur, false, nil
	}

	if err := s.repo.AppendRewardEntry(ctx, domain.RewardEntry{
		UserID: userID,
		Points: 0,
		Reason: domain.ReasonTierChange,
		Tier:   cur,
	}); err != nil {
		return "", false, fmt.Errorf("append tier change: %w", err)
	}
	return cur, true, nil
}
