package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

const defaultStaleBasketDays = 30

// StaleBasketJobParams configure the empty basket sweep.
type StaleBasketJobParams struct {
	Logger  *logger.Logger
	Baskets basketSweeper
	Days    int
}

type basketSweeper interface {
	DeleteEmptyBasketsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewStaleBasketJob builds the job that removes empty baskets nobody has
// touched within the configured number of days. Baskets with items are kept.
func NewStaleBasketJob(params StaleBasketJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Baskets == nil {
		return nil, fmt.Errorf("basket repository required")
	}
	days := params.Days
	if days <= 0 {
		days = defaultStaleBasketDays
	}
	return &staleBasketJob{
		logg:    params.Logger,
		baskets: params.Baskets,
		days:    days,
		now:     time.Now,
	}, nil
}

type staleBasketJob struct {
	logg    *logger.Logger
	baskets basketSweeper
	days    int
	now     func() time.Time
}

func (j *staleBasketJob) Name() string { return "stale-basket-cleanup" }

func (j *staleBasketJob) Run(ctx context.Context) error {
	cutoff := cutoffDays(j.now(), j.days)
	removed, err := j.baskets.DeleteEmptyBasketsBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete stale baskets: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":           cutoff,
		"baskets_removed":  removed,
		"stale_after_days": j.days,
	}), "stale basket cleanup complete")
	return nil
}
