// Package memory keeps identities in process memory. It backs the memory
// identity backend and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/uiticket/ticket-system/internal/core/domain"
)

type UserStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
	roles *RoleStore
}

// NewUserStore creates a store resolving role names against roles.
func NewUserStore(roles *RoleStore) *UserStore {
	return &UserStore{users: make(map[uuid.UUID]*domain.User), roles: roles}
}

func cloneUser(u *domain.User) *domain.User {
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	return &clone
}

func (s *UserStore) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) FindByNormalizedEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if domain.NormalizeEmail(u.Email) == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *UserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalized := domain.NormalizeEmail(user.Email)
	for _, u := range s.users {
		if domain.NormalizeEmail(u.Email) == normalized {
			return domain.ErrDuplicateEmail
		}
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	normalized := domain.NormalizeEmail(user.Email)
	for id, u := range s.users {
		if id != user.ID && domain.NormalizeEmail(u.Email) == normalized {
			return domain.ErrDuplicateEmail
		}
	}
	updated := cloneUser(user)
	updated.Roles = stored.Roles
	s.users[user.ID] = updated
	return nil
}

func (s *UserStore) AddToRole(ctx context.Context, userID uuid.UUID, roleName string) error {
	if _, err := s.roles.FindByName(ctx, roleName); err != nil {
		return fmt.Errorf("role %q: %w", roleName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	if u.HasRole(roleName) {
		return domain.ErrAlreadyInRole
	}
	u.Roles = append(u.Roles, roleName)
	sort.Strings(u.Roles)
	return nil
}

type RoleStore struct {
	mu    sync.RWMutex
	roles map[string]domain.Role
}

func NewRoleStore() *RoleStore {
	return &RoleStore{roles: make(map[string]domain.Role)}
}

func (s *RoleStore) FindByName(_ context.Context, name string) (*domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roles[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (s *RoleStore) Create(_ context.Context, role *domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roles[role.Name]; ok {
		return domain.ErrDuplicateRole
	}
	s.roles[role.Name] = *role
	return nil
}

// Len reports how many roles exist.
func (s *RoleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roles)
}
