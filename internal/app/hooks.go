package app

import (
	"context"

	"github.com/samber/lo"

	"paybatch/internal/domain"
	"paybatch/internal/domain/batch"
	"paybatch/internal/domain/checkrange"
	"paybatch/pkg/logger"
)

// LowCapacityThreshold is the number of available checks below which a
// category is reported as running low after a finalize.
const LowCapacityThreshold int64 = 20

// LowCapacity returns the usage of every category b drew numbers from whose
// active ranges have fewer than threshold numbers left.
func LowCapacity(ctx context.Context, alloc *checkrange.Allocator, b *batch.Batch, threshold int64) ([]*checkrange.Usage, error) {
	categories := lo.Uniq(lo.FilterMap(b.Items, func(it *batch.Item, _ int) (checkrange.Category, bool) {
		return it.Mode.CheckCategory()
	}))

	var low []*checkrange.Usage
	for _, c := range categories {
		u, err := alloc.Usage(ctx, c)
		if err != nil {
			return nil, err
		}
		if u.Available < threshold {
			low = append(low, u)
		}
	}
	return low, nil
}

func registerBatchHooks(batches *batch.Service, alloc *checkrange.Allocator) {
	batches.Hooks().On(domain.AfterFinalize, func(ctx context.Context, b *batch.Batch) error {
		low, err := LowCapacity(ctx, alloc, b, LowCapacityThreshold)
		if err != nil {
			return err
		}
		for _, u := range low {
			logger.Warn(ctx, "check range running low",
				"category", u.Category,
				"available", u.Available,
				"percent_used", u.PercentUsed)
		}
		return nil
	})

	batches.Hooks().On(domain.AfterDownload, func(ctx context.Context, b *batch.Batch) error {
		logger.Info(ctx, "payment batch downloaded", "batch_id", b.ID, "sequence", b.Sequence)
		return nil
	})
}
