package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

type userRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName        string    `gorm:"size:200"`
	UserName        string    `gorm:"size:256;not null"`
	Email           string    `gorm:"size:256;not null"`
	NormalizedEmail string    `gorm:"size:256;not null;uniqueIndex"`
	PasswordHash    string    `gorm:"not null"`
	ProfilePicture  string    `gorm:"size:512"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (userRecord) TableName() string { return "users" }

type roleRecord struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string    `gorm:"size:64;not null;uniqueIndex"`
}

func (roleRecord) TableName() string { return "roles" }

type userRoleRecord struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (userRoleRecord) TableName() string { return "user_roles" }

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:              u.ID,
		FullName:        u.FullName,
		UserName:        u.UserName,
		Email:           u.Email,
		NormalizedEmail: domain.NormalizeEmail(u.Email),
		PasswordHash:    u.PasswordHash,
		ProfilePicture:  u.ProfilePicture,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (r userRecord) toDomain(roles []string) *domain.User {
	return &domain.User{
		ID:             r.ID,
		FullName:       r.FullName,
		UserName:       r.UserName,
		Email:          r.Email,
		PasswordHash:   r.PasswordHash,
		ProfilePicture: r.ProfilePicture,
		Roles:          roles,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// UserStore keeps accounts in the users table and role links in user_roles.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.findOne(ctx, "id = ?", id)
}

func (s *UserStore) FindByNormalizedEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "normalized_email = ?", email)
}

func (s *UserStore) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var recs []userRecord
	if err := s.db.WithContext(ctx).Where(query, arg).Limit(1).Find(&recs).Error; err != nil {
		return nil, &domain.StorageError{Op: "find user", Err: err}
	}
	if len(recs) == 0 {
		return nil, domain.ErrNotFound
	}

	roles, err := s.roleNames(ctx, recs[0].ID)
	if err != nil {
		return nil, err
	}
	return recs[0].toDomain(roles), nil
}

func (s *UserStore) roleNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).
		Table("roles").
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, &domain.StorageError{Op: "load roles", Err: err}
	}
	return names, nil
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	rec := toUserRecord(user)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return &domain.StorageError{Op: "create user", Err: err}
	}
	return nil
}

func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	rec := toUserRecord(user)
	res := s.db.WithContext(ctx).
		Model(&userRecord{ID: user.ID}).
		Select("full_name", "user_name", "email", "normalized_email", "password_hash", "profile_picture", "updated_at").
		Updates(&rec)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return domain.ErrDuplicateEmail
		}
		return &domain.StorageError{Op: "update user", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UserStore) AddToRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	var roles []roleRecord
	if err := s.db.WithContext(ctx).Where("name = ?", roleName).Limit(1).Find(&roles).Error; err != nil {
		return &domain.StorageError{Op: "find role", Err: err}
	}
	if len(roles) == 0 {
		return fmt.Errorf("role %q: %w", roleName, domain.ErrNotFound)
	}

	link := userRoleRecord{UserID: userID, RoleID: roles[0].ID}
	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyInRole
		}
		return &domain.StorageError{Op: "add to role", Err: err}
	}
	return nil
}

// RoleStore keeps the role catalogue in the roles table.
type RoleStore struct {
	db *gorm.DB
}

func NewRoleStore(db *gorm.DB) *RoleStore {
	return &RoleStore{db: db}
}

func (s *RoleStore) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	var recs []roleRecord
	if err := s.db.WithContext(ctx).Where("name = ?", name).Limit(1).Find(&recs).Error; err != nil {
		return nil, &domain.StorageError{Op: "find role", Err: err}
	}
	if len(recs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &domain.Role{ID: recs[0].ID, Name: recs[0].Name}, nil
}

func (s *RoleStore) Create(ctx context.Context, role *domain.Role) error {
	rec := roleRecord{ID: role.ID, Name: role.Name}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateRole
		}
		return &domain.StorageError{Op: "create role", Err: err}
	}
	return nil
}
