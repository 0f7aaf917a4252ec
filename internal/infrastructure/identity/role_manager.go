package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/core/ports"
)

// RoleManager manages the role catalogue over a RoleRepository.
type RoleManager struct {
	roles RoleRepository
	log   zerolog.Logger
}

var _ ports.RoleStore = (*RoleManager)(nil)

func NewRoleManager(roles RoleRepository, log zerolog.Logger) *RoleManager {
	return &RoleManager{roles: roles, log: log}
}

func (m *RoleManager) RoleExists(ctx context.Context, name string) (bool, error) {
	_, err := m.roles.FindByName(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("role exists: %w", err)
	}
}

func (m *RoleManager) Create(ctx context.Context, name string) (ports.IdentityResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ports.Failed(ports.IdentityError{
			Code:        "InvalidRoleName",
			Description: "Role name '' is invalid.",
		}), nil
	}

	err := m.roles.Create(ctx, &domain.Role{ID: uuid.New(), Name: name})
	switch {
	case err == nil:
		return ports.Success(), nil
	case errors.Is(err, domain.ErrDuplicateRole):
		return ports.Failed(ports.IdentityError{
			Code:        "DuplicateRoleName",
			Description: fmt.Sprintf("Role name '%s' is already taken.", name),
		}), nil
	default:
		return ports.IdentityResult{}, fmt.Errorf("create role: %w", err)
	}
}
