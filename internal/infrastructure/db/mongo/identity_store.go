package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

const (
	usersCollection = "identity_users"
	rolesCollection = "identity_roles"
)

type mongoUser struct {
	ID              string   `bson:"_id"`
	FullName        string   `bson:"full_name"`
	UserName        string   `bson:"user_name"`
	Email           string   `bson:"email"`
	NormalizedEmail string   `bson:"normalized_email"`
	PasswordHash    string   `bson:"password_hash"`
	ProfilePicture  string   `bson:"profile_picture,omitempty"`
	Roles           []string `bson:"roles"`
	CreatedAt       int64    `bson:"created_at"`
	UpdatedAt       int64    `bson:"updated_at"`
}

type mongoRole struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

func toMongoUser(u *domain.User) mongoUser {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return mongoUser{
		ID:              u.ID.String(),
		FullName:        u.FullName,
		UserName:        u.UserName,
		Email:           u.Email,
		NormalizedEmail: domain.NormalizeEmail(u.Email),
		PasswordHash:    u.PasswordHash,
		ProfilePicture:  u.ProfilePicture,
		Roles:           roles,
		CreatedAt:       u.CreatedAt.Unix(),
		UpdatedAt:       u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(mu.ID)
	if err != nil {
		return nil, fmt.Errorf("decode user id %q: %w", mu.ID, err)
	}
	return &domain.User{
		ID:             id,
		FullName:       mu.FullName,
		UserName:       mu.UserName,
		Email:          mu.Email,
		PasswordHash:   mu.PasswordHash,
		ProfilePicture: mu.ProfilePicture,
		Roles:          mu.Roles,
		CreatedAt:      unixToTime(mu.CreatedAt),
		UpdatedAt:      unixToTime(mu.UpdatedAt),
	}, nil
}

// EnsureIndexes creates the unique indexes the identity collections rely on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	_, err = db.Collection(rolesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("roles index: %w", err)
	}
	return nil
}

// UserStore keeps accounts as documents with their role names embedded.
type UserStore struct {
	users *mongo.Collection
	roles *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{users: db.Collection(usersCollection), roles: db.Collection(rolesCollection)}
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"_id": id.String()})
}

func (s *UserStore) FindByNormalizedEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, bson.M{"normalized_email": email})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := s.users.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StorageError{Op: "find user", Err: err}
	}
	return mu.toDomain()
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.users.InsertOne(ctx, toMongoUser(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return &domain.StorageError{Op: "insert user", Err: err}
	}
	return nil
}

// Update rewrites the profile fields; role membership is left as stored.
func (s *UserStore) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toMongoUser(user)
	set := bson.M{
		"full_name":        doc.FullName,
		"user_name":        doc.UserName,
		"email":            doc.Email,
		"normalized_email": doc.NormalizedEmail,
		"password_hash":    doc.PasswordHash,
		"profile_picture":  doc.ProfilePicture,
		"updated_at":       doc.UpdatedAt,
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return &domain.StorageError{Op: "update user", Err: err}
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *UserStore) AddToRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := s.roles.FindOne(ctx, bson.M{"name": roleName}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("role %q: %w", roleName, domain.ErrNotFound)
		}
		return &domain.StorageError{Op: "find role", Err: err}
	}

	res, err := s.users.UpdateOne(ctx,
		bson.M{"_id": userID.String(), "roles": bson.M{"$ne": roleName}},
		bson.M{"$push": bson.M{"roles": roleName}},
	)
	if err != nil {
		return &domain.StorageError{Op: "add to role", Err: err}
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := s.users.CountDocuments(ctx, bson.M{"_id": userID.String()})
	if err != nil {
		return &domain.StorageError{Op: "add to role", Err: err}
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrAlreadyInRole
}

// RoleStore keeps the role catalogue in its own collection.
type RoleStore struct {
	roles *mongo.Collection
}

func NewRoleStore(db *mongo.Database) *RoleStore {
	return &RoleStore{roles: db.Collection(rolesCollection)}
}

func (s *RoleStore) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRole
	if err := s.roles.FindOne(ctx, bson.M{"name": name}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StorageError{Op: "find role", Err: err}
	}
	id, err := uuid.Parse(mr.ID)
	if err != nil {
		return nil, fmt.Errorf("decode role id %q: %w", mr.ID, err)
	}
	return &domain.Role{ID: id, Name: mr.Name}, nil
}

func (s *RoleStore) Create(ctx context.Context, role *domain.Role) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := s.roles.InsertOne(ctx, mongoRole{ID: role.ID.String(), Name: role.Name}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateRole
		}
		return &domain.StorageError{Op: "insert role", Err: err}
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
