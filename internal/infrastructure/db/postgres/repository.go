package postgres

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
)

// Repository is the GORM-backed generic repository. Reads go straight to the
// database; writes are staged on the shared ChangeTracker.
type Repository[T domain.Entity] struct {
	db      *gorm.DB
	tracker *ChangeTracker
}

var _ ports.Repository[*domain.Ticket] = (*Repository[*domain.Ticket])(nil)

func NewRepository[T domain.Entity](db *gorm.DB, tracker *ChangeTracker) *Repository[T] {
	return &Repository[T]{db: db, tracker: tracker}
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.db.WithContext(ctx).Find(&out).Error; err != nil {
		return nil, &domain.StorageError{Op: "get all", Err: err}
	}
	return out, nil
}

func (r *Repository[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	var zero T
	var out []T
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return zero, &domain.StorageError{Op: "get by id", Err: err}
	}
	if len(out) == 0 {
		return zero, fmt.Errorf("%s %s: %w", entityName[T](), id, domain.ErrNotFound)
	}
	return out[0], nil
}

// FindBy filters on a single column. The column name is quoted as an identifier.
func (r *Repository[T]) FindBy(ctx context.Context, column string, value any) ([]T, error) {
	var out []T
	cond := clause.Eq{Column: clause.Column{Name: column}, Value: value}
	if err := r.db.WithContext(ctx).Where(cond).Find(&out).Error; err != nil {
		return nil, &domain.StorageError{Op: "find by " + column, Err: err}
	}
	return out, nil
}

// Save stages an insert.
func (r *Repository[T]) Save(_ context.Context, entity T) error {
	return r.stage(changeCreate, entity)
}

// Update stages a full-row update. Commit fails with domain.ErrNotFound when
// no row has the entity's id.
func (r *Repository[T]) Update(_ context.Context, entity T) error {
	return r.stage(changeUpdate, entity)
}

// Delete stages a removal. Commit fails with domain.ErrNotFound when no row
// has the entity's id.
func (r *Repository[T]) Delete(_ context.Context, entity T) error {
	return r.stage(changeDelete, entity)
}

func (r *Repository[T]) stage(kind changeKind, entity T) error {
	if isNil(entity) {
		return fmt.Errorf("%s %s: nil entity: %w", kind, entityName[T](), domain.ErrInvalidEntity)
	}
	id := entity.EntityID()
	if id == uuid.Nil {
		return fmt.Errorf("%s %s: missing id: %w", kind, entityName[T](), domain.ErrInvalidEntity)
	}
	r.tracker.stage(change{kind: kind, entity: entity, id: id})
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

func entityName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
