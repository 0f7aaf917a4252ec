package identity

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/uiticket/ticket-system/internal/core/domain"
	"github.com/uiticket/ticket-system/internal/infrastructure/db/memory"
)

func newManagers() (*UserManager, *RoleManager) {
	roles := memory.NewRoleStore()
	users := memory.NewUserStore(roles)
	opts := DefaultOptions()
	opts.BcryptCost = bcrypt.MinCost
	return NewUserManager(users, opts, zerolog.Nop()), NewRoleManager(roles, zerolog.Nop())
}

func TestPasswordPolicy_Validate(t *testing.T) {
	p := DefaultPasswordPolicy()

	if errs := p.Validate("Secret1!"); len(errs) != 0 {
		t.Fatalf("expected valid password, got %+v", errs)
	}

	errs := p.Validate("abc")
	codes := make(map[string]bool)
	for _, e := range errs {
		codes[e.Code] = true
	}
	for _, want := range []string{"PasswordTooShort", "PasswordRequiresNonAlphanumeric", "PasswordRequiresDigit", "PasswordRequiresUpper"} {
		if !codes[want] {
			t.Fatalf("expected %s in %+v", want, errs)
		}
	}
	if codes["PasswordRequiresLower"] {
		t.Fatalf("did not expect PasswordRequiresLower")
	}
}

func TestUserManager_CreateAndCheckPassword(t *testing.T) {
	users, _ := newManagers()
	ctx := context.Background()

	u := domain.NewUser("Alice", "Alice@Example.com")
	res, err := users.Create(ctx, u, "Secret1!")
	if err != nil || !res.Succeeded {
		t.Fatalf("create: %v %+v", err, res)
	}
	if u.PasswordHash == "" || u.PasswordHash == "Secret1!" {
		t.Fatalf("expected password to be hashed")
	}

	found, err := users.FindByEmail(ctx, "  alice@example.COM ")
	if err != nil || found == nil {
		t.Fatalf("expected case-insensitive lookup, got %v %v", found, err)
	}

	if ok, err := users.CheckPassword(ctx, found, "Secret1!"); err != nil || !ok {
		t.Fatalf("expected password to match, got %v %v", ok, err)
	}
	if ok, err := users.CheckPassword(ctx, found, "secret1!"); err != nil || ok {
		t.Fatalf("expected mismatch, got %v %v", ok, err)
	}
}

func TestUserManager_Create_PasswordTooLong(t *testing.T) {
	users, _ := newManagers()
	ctx := context.Background()

	long := "Aa1!" + strings.Repeat("x", 80)
	res, err := users.Create(ctx, domain.NewUser("Long", "long@example.com"), long)
	if err != nil {
		t.Fatalf("expected a rejected result, got error: %v", err)
	}
	if res.Succeeded || res.FirstError() != "Passwords must be at most 72 bytes." {
		t.Fatalf("unexpected result: %+v", res)
	}
	if found, _ := users.FindByEmail(ctx, "long@example.com"); found != nil {
		t.Fatalf("expected no account to be stored")
	}

	exact := "Aa1!" + strings.Repeat("x", MaxPasswordBytes-4)
	if res, err := users.Create(ctx, domain.NewUser("Edge", "edge@example.com"), exact); err != nil || !res.Succeeded {
		t.Fatalf("72-byte password should be accepted: %v %+v", err, res)
	}
}

func TestUserManager_Create_Rejections(t *testing.T) {
	users, _ := newManagers()
	ctx := context.Background()

	if res, _ := users.Create(ctx, domain.NewUser("A", "a@example.com"), "Secret1!"); !res.Succeeded {
		t.Fatalf("seed failed: %+v", res)
	}

	res, err := users.Create(ctx, domain.NewUser("B", "A@EXAMPLE.COM"), "Secret1!")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Succeeded || res.Errors[0].Code != "DuplicateEmail" {
		t.Fatalf("expected DuplicateEmail, got %+v", res)
	}
	if res.FirstError() != "Email 'A@EXAMPLE.COM' is already taken." {
		t.Fatalf("unexpected description %q", res.FirstError())
	}

	res, _ = users.Create(ctx, domain.NewUser("C", "not-an-email"), "Secret1!")
	if res.Succeeded || res.Errors[0].Code != "InvalidEmail" {
		t.Fatalf("expected InvalidEmail, got %+v", res)
	}

	res, _ = users.Create(ctx, domain.NewUser("D", "d@example.com"), "weak")
	if res.Succeeded || len(res.Errors) == 0 {
		t.Fatalf("expected password rejection, got %+v", res)
	}
	if u, _ := users.FindByEmail(ctx, "d@example.com"); u != nil {
		t.Fatalf("rejected user must not be stored")
	}
}

func TestUserManager_FindByID_Missing(t *testing.T) {
	users, _ := newManagers()
	u, err := users.FindByID(context.Background(), uuid.New())
	if err != nil || u != nil {
		t.Fatalf("expected nil, nil; got %v %v", u, err)
	}
}

func TestUserManager_Update(t *testing.T) {
	users, _ := newManagers()
	ctx := context.Background()

	u := domain.NewUser("Eve", "eve@example.com")
	if res, _ := users.Create(ctx, u, "Secret1!"); !res.Succeeded {
		t.Fatalf("seed failed: %+v", res)
	}

	u.UpdateProfilePicture("/static/avatars/eve.png")
	if res, err := users.Update(ctx, u); err != nil || !res.Succeeded {
		t.Fatalf("update: %v %+v", err, res)
	}
	stored, _ := users.FindByID(ctx, u.ID)
	if stored.ProfilePicture != "/static/avatars/eve.png" {
		t.Fatalf("expected picture persisted, got %q", stored.ProfilePicture)
	}

	ghost := domain.NewUser("Ghost", "ghost@example.com")
	if res, err := users.Update(ctx, ghost); err != nil || res.Succeeded {
		t.Fatalf("expected failed result for unknown user, got %v %+v", err, res)
	}
}

func TestRoles_CreateAndAssign(t *testing.T) {
	users, roles := newManagers()
	ctx := context.Background()

	if exists, _ := roles.RoleExists(ctx, domain.RoleSupport); exists {
		t.Fatalf("expected role to be missing")
	}
	if res, err := roles.Create(ctx, domain.RoleSupport); err != nil || !res.Succeeded {
		t.Fatalf("create role: %v %+v", err, res)
	}
	if res, _ := roles.Create(ctx, domain.RoleSupport); res.Succeeded || res.Errors[0].Code != "DuplicateRoleName" {
		t.Fatalf("expected DuplicateRoleName, got %+v", res)
	}
	if exists, _ := roles.RoleExists(ctx, domain.RoleSupport); !exists {
		t.Fatalf("expected role to exist")
	}

	u := domain.NewUser("Frank", "frank@example.com")
	if res, _ := users.Create(ctx, u, "Secret1!"); !res.Succeeded {
		t.Fatalf("seed failed: %+v", res)
	}

	if res, err := users.AddToRole(ctx, u, domain.RoleSupport); err != nil || !res.Succeeded {
		t.Fatalf("add to role: %v %+v", err, res)
	}
	if !u.HasRole(domain.RoleSupport) {
		t.Fatalf("expected role recorded on user")
	}
	if res, _ := users.AddToRole(ctx, u, domain.RoleSupport); res.Succeeded || res.Errors[0].Code != "UserAlreadyInRole" {
		t.Fatalf("expected UserAlreadyInRole, got %+v", res)
	}
	if res, _ := users.AddToRole(ctx, u, domain.RoleAdmin); res.Succeeded || res.Errors[0].Code != "InvalidRoleName" {
		t.Fatalf("expected InvalidRoleName, got %+v", res)
	}

	claims, _ := users.GetClaims(ctx, u)
	if !domain.NewPrincipal(claims).IsInRole(domain.RoleSupport) {
		t.Fatalf("expected role claim, got %+v", claims)
	}
}
