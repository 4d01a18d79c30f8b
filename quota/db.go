package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"weatherwizard/manager"
	"weatherwizard/store"
)

// DBLedger keeps daily counters in the quota_entries table.
type DBLedger struct {
	db     *gorm.DB
	limits Limits
	now    func() time.Time
}

func NewDBLedger(db *gorm.DB, limits Limits, now func() time.Time) *DBLedger {
	if now == nil {
		now = time.Now
	}
	return &DBLedger{db: db, limits: limits, now: now}
}

func (l *DBLedger) Consume(ctx context.Context, provider manager.Provider) error {
	log := zerolog.Ctx(ctx)
	date := day(l.now())

	log.Debug().Str("provider", provider.String()).Msg("querying rate limit")

	entry := store.QuotaEntry{
		Date:     date,
		Provider: provider.String(),
		Limit:    l.limits.For(provider),
	}
	err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("create quota entry: %w", err)
	}

	res := l.db.WithContext(ctx).
		Model(&store.QuotaEntry{}).
		Where("date = ? AND provider = ? AND calls < call_limit - ?", date, provider.String(), Margin).
		UpdateColumn("calls", gorm.Expr("calls + ?", 1))
	if res.Error != nil {
		return fmt.Errorf("increment quota: %w", res.Error)
	}

	usage, err := l.Usage(ctx, provider)
	if err != nil {
		return err
	}

	if res.RowsAffected == 0 {
		log.Info().Str("provider", provider.String()).Int("calls", usage.Calls).Int("limit", usage.Limit).Msg("rate limit reached")
		return fmt.Errorf("%s: %w", provider, manager.ErrQuotaExceeded)
	}

	log.Info().Str("provider", provider.String()).Msgf("%d of %d calls made", usage.Calls, usage.Limit)
	return nil
}

func (l *DBLedger) Usage(ctx context.Context, provider manager.Provider) (manager.QuotaEntry, error) {
	now := l.now()

	var entry store.QuotaEntry
	err := l.db.WithContext(ctx).
		Where("date = ? AND provider = ?", day(now), provider.String()).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return manager.QuotaEntry{
			Date:     manager.Truncate(now),
			Provider: provider,
			Limit:    l.limits.For(provider),
		}, nil
	}
	if err != nil {
		return manager.QuotaEntry{}, err
	}

	return manager.QuotaEntry{
		Date:     manager.Truncate(now),
		Provider: provider,
		Calls:    entry.Calls,
		Limit:    entry.Limit,
	}, nil
}
