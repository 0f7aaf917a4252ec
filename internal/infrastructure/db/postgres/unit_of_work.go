package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/pkg/metrics"
)

// UnitOfWork flushes a ChangeTracker inside one database transaction.
type UnitOfWork struct {
	db      *gorm.DB
	tracker *ChangeTracker
	log     zerolog.Logger
}

func NewUnitOfWork(db *gorm.DB, tracker *ChangeTracker, log zerolog.Logger) *UnitOfWork {
	return &UnitOfWork{db: db, tracker: tracker, log: log}
}

// Commit applies every staged change in staging order. Either all of them
// become durable or none does; on failure the staged changes are kept and the
// cause is returned wrapped in a *domain.CommitError.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	changes := u.tracker.pending()
	if len(changes) == 0 {
		return nil
	}

	start := time.Now()
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, c := range changes {
			if err := apply(tx, c); err != nil {
				return fmt.Errorf("change %d (%s %s): %w", i, c.kind, c.id, err)
			}
		}
		return nil
	})
	metrics.CommitDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.CommitsTotal.WithLabelValues("error").Inc()
		u.log.Error().Err(err).Int("changes", len(changes)).Msg("unit of work rolled back")
		return &domain.CommitError{Err: err}
	}

	u.tracker.discard(len(changes))
	metrics.CommitsTotal.WithLabelValues("success").Inc()
	u.log.Debug().Int("changes", len(changes)).Dur("duration", time.Since(start)).Msg("unit of work committed")
	return nil
}

func apply(tx *gorm.DB, c change) error {
	switch c.kind {
	case changeCreate:
		if err := tx.Create(c.entity).Error; err != nil {
			return &domain.StorageError{Op: "insert", Err: err}
		}
		return nil
	case changeUpdate:
		res := tx.Model(c.entity).Select("*").Omit("created_at").Updates(c.entity)
		if res.Error != nil {
			return &domain.StorageError{Op: "update", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	case changeDelete:
		res := tx.Delete(c.entity)
		if res.Error != nil {
			return &domain.StorageError{Op: "delete", Err: res.Error}
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	default:
		return fmt.Errorf("unknown change kind %d", c.kind)
	}
}
