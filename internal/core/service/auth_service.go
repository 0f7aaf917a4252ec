package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
	"github.com/uiticket/ticket-system/internal/pkg/metrics"
)

const (
	msgRegistered   = "user registered"
	msgUnknownError = "unknown error"
)

// AuthService implements sign-in, sign-out, registration and profile updates
// on top of the identity store, role store and session mechanism.
type AuthService struct {
	identity ports.IdentityStore
	roles    ports.RoleStore
	sessions ports.SessionManager
	log      zerolog.Logger
	now      func() time.Time
}

// AuthOption customises an AuthService.
type AuthOption func(*AuthService)

// WithClock overrides the time source used to compute session expiry.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(
	identity ports.IdentityStore,
	roles ports.RoleStore,
	sessions ports.SessionManager,
	log zerolog.Logger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		identity: identity,
		roles:    roles,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate verifies the credentials and, on success, signs the user in.
// It reports false for both unknown emails and wrong passwords so callers
// cannot tell the two apart.
func (s *AuthService) Authenticate(ctx context.Context, email, password string, rememberMe bool) (bool, error) {
	user, err := s.identity.FindByEmail(ctx, email)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("authenticate: %w", err)
	}
	if user == nil {
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		return false, nil
	}

	valid, err := s.identity.CheckPassword(ctx, user, password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("authenticate: %w", err)
	}
	if !valid {
		metrics.AuthAttemptsTotal.WithLabelValues("failure").Inc()
		return false, nil
	}

	claims, err := s.identity.GetClaims(ctx, user)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("authenticate: claims: %w", err)
	}

	opts := domain.SessionOptions{
		IsPersistent: rememberMe,
		ExpiresUTC:   s.now().UTC().Add(domain.SessionLifetime),
	}
	if err := s.sessions.SignIn(ctx, domain.NewPrincipal(claims), opts); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("authenticate: sign in: %w", err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID.String()).Bool("remember_me", rememberMe).Msg("user signed in")
	return true, nil
}

// Logout terminates the current session.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.sessions.SignOut(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// RegisterUser creates the account, grants it the Support role and signs it in
// with a non-persistent session. Rule violations reported by the identity store
// come back as an unsuccessful result carrying the first error description.
func (s *AuthService) RegisterUser(ctx context.Context, fullName, email, password string) (ports.RegisterResult, error) {
	user := domain.NewUser(strings.TrimSpace(fullName), strings.TrimSpace(email))

	result, err := s.identity.Create(ctx, user, password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return ports.RegisterResult{}, fmt.Errorf("register: %w", err)
	}
	if !result.Succeeded {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		msg := result.FirstError()
		if msg == "" {
			msg = msgUnknownError
		}
		return ports.RegisterResult{Success: false, Message: msg}, nil
	}

	if err := s.EnsureRolesExist(ctx); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return ports.RegisterResult{}, fmt.Errorf("register: %w", err)
	}

	roleResult, err := s.identity.AddToRole(ctx, user, domain.RoleSupport)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return ports.RegisterResult{}, fmt.Errorf("register: add role: %w", err)
	}
	if !roleResult.Succeeded {
		s.log.Warn().
			Str("user_id", user.ID.String()).
			Str("reason", roleResult.FirstError()).
			Msg("support role not granted")
	} else if !user.HasRole(domain.RoleSupport) {
		user.Roles = append(user.Roles, domain.RoleSupport)
	}

	principal := domain.NewPrincipal(domain.ClaimsFor(user))
	if err := s.sessions.SignIn(ctx, principal, domain.SessionOptions{IsPersistent: false}); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return ports.RegisterResult{}, fmt.Errorf("register: sign in: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID.String()).Msg("user registered")
	return ports.RegisterResult{Success: true, Message: msgRegistered}, nil
}

// EmailExists reports whether an account already uses the email.
func (s *AuthService) EmailExists(ctx context.Context, email string) (bool, error) {
	user, err := s.identity.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return user != nil, nil
}

// UpdateUserProfile replaces the profile picture path of the user. It reports
// false without touching the store when the user does not exist.
func (s *AuthService) UpdateUserProfile(ctx context.Context, userID, imagePath string) (bool, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return false, nil
	}

	user, err := s.identity.FindByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	if user == nil {
		return false, nil
	}

	user.UpdateProfilePicture(imagePath)
	result, err := s.identity.Update(ctx, user)
	if err != nil {
		return false, fmt.Errorf("update profile: %w", err)
	}
	return result.Succeeded, nil
}

// CurrentUser loads the account behind a session subject.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("current user %q: %w", userID, domain.ErrNotFound)
	}
	user, err := s.identity.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("current user %s: %w", id, domain.ErrNotFound)
	}
	return user, nil
}

// EnsureRolesExist creates each bootstrap role that is missing. Calling it any
// number of times leaves exactly one record per role.
func (s *AuthService) EnsureRolesExist(ctx context.Context) error {
	for _, name := range domain.BootstrapRoles {
		exists, err := s.roles.RoleExists(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure roles: %s: %w", name, err)
		}
		if exists {
			continue
		}
		result, err := s.roles.Create(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure roles: create %s: %w", name, err)
		}
		if !result.Succeeded {
			s.log.Warn().Str("role", name).Str("reason", result.FirstError()).Msg("role not created")
			continue
		}
		s.log.Info().Str("role", name).Msg("role created")
	}
	return nil
}
