// Package identity implements account and role management over pluggable
// persistence backends.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
)

// Options configures a UserManager.
type Options struct {
	BcryptCost int
	Passwords  PasswordPolicy
}

func DefaultOptions() Options {
	return Options{BcryptCost: bcrypt.DefaultCost, Passwords: DefaultPasswordPolicy()}
}

type accountFields struct {
	UserName string `validate:"required,max=256"`
	Email    string `validate:"required,email,max=256"`
}

// UserManager enforces account rules and password hashing on top of a
// UserRepository.
type UserManager struct {
	users    UserRepository
	opts     Options
	validate *validator.Validate
	log      zerolog.Logger
}

var _ ports.IdentityStore = (*UserManager)(nil)

func NewUserManager(users UserRepository, opts Options, log zerolog.Logger) *UserManager {
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &UserManager{users: users, opts: opts, validate: validator.New(), log: log}
}

func (m *UserManager) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := m.users.FindByNormalizedEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (m *UserManager) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := m.users.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (m *UserManager) CheckPassword(_ context.Context, user *domain.User, password string) (bool, error) {
	if user == nil || user.PasswordHash == "" {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("check password: %w", err)
	}
}

// Create validates the account and password, hashes the password and stores
// the user. Every violated rule is reported in the result.
func (m *UserManager) Create(ctx context.Context, user *domain.User, password string) (ports.IdentityResult, error) {
	errs := m.validateAccount(user)

	existing, err := m.FindByEmail(ctx, user.Email)
	if err != nil {
		return ports.IdentityResult{}, fmt.Errorf("create user: %w", err)
	}
	if existing != nil {
		errs = append(errs, duplicateEmail(user.Email))
	}
	errs = append(errs, m.opts.Passwords.Validate(password)...)
	if len(errs) > 0 {
		return ports.Failed(errs...), nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), m.opts.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return ports.Failed(ports.IdentityError{
			Code:        "PasswordTooLong",
			Description: fmt.Sprintf("Passwords must be at most %d bytes.", MaxPasswordBytes),
		}), nil
	}
	if err != nil {
		return ports.IdentityResult{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if err := m.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return ports.Failed(duplicateEmail(user.Email)), nil
		}
		return ports.IdentityResult{}, fmt.Errorf("create user: %w", err)
	}

	m.log.Info().Str("user_id", user.ID.String()).Msg("account created")
	return ports.Success(), nil
}

func (m *UserManager) Update(ctx context.Context, user *domain.User) (ports.IdentityResult, error) {
	if errs := m.validateAccount(user); len(errs) > 0 {
		return ports.Failed(errs...), nil
	}

	user.UpdatedAt = time.Now().UTC()
	if err := m.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return ports.Failed(duplicateEmail(user.Email)), nil
		case errors.Is(err, domain.ErrNotFound):
			return ports.Failed(ports.IdentityError{Code: "UserNotFound", Description: "User not found."}), nil
		default:
			return ports.IdentityResult{}, fmt.Errorf("update user: %w", err)
		}
	}
	return ports.Success(), nil
}

func (m *UserManager) GetClaims(_ context.Context, user *domain.User) ([]domain.Claim, error) {
	return domain.ClaimsFor(user), nil
}

// AddToRole links the user to an existing role and records it on user.
func (m *UserManager) AddToRole(ctx context.Context, user *domain.User, roleName string) (ports.IdentityResult, error) {
	err := m.users.AddToRole(ctx, user.ID, roleName)
	switch {
	case err == nil:
		if !user.HasRole(roleName) {
			user.Roles = append(user.Roles, roleName)
		}
		return ports.Success(), nil
	case errors.Is(err, domain.ErrAlreadyInRole):
		return ports.Failed(ports.IdentityError{
			Code:        "UserAlreadyInRole",
			Description: fmt.Sprintf("User already in role '%s'.", roleName),
		}), nil
	case errors.Is(err, domain.ErrNotFound):
		return ports.Failed(ports.IdentityError{
			Code:        "InvalidRoleName",
			Description: fmt.Sprintf("Role %s does not exist.", roleName),
		}), nil
	default:
		return ports.IdentityResult{}, fmt.Errorf("add to role: %w", err)
	}
}

func (m *UserManager) validateAccount(user *domain.User) []ports.IdentityError {
	err := m.validate.Struct(accountFields{UserName: user.UserName, Email: strings.TrimSpace(user.Email)})
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []ports.IdentityError{{Code: "InvalidUser", Description: err.Error()}}
	}

	var errs []ports.IdentityError
	for _, fe := range ve {
		switch fe.Field() {
		case "Email":
			errs = append(errs, ports.IdentityError{
				Code:        "InvalidEmail",
				Description: fmt.Sprintf("Email '%s' is invalid.", user.Email),
			})
		case "UserName":
			errs = append(errs, ports.IdentityError{
				Code:        "InvalidUserName",
				Description: fmt.Sprintf("Username '%s' is invalid.", user.UserName),
			})
		}
	}
	return errs
}

func duplicateEmail(email string) ports.IdentityError {
	return ports.IdentityError{
		Code:        "DuplicateEmail",
		Description: fmt.Sprintf("Email '%s' is already taken.", email),
	}
}
