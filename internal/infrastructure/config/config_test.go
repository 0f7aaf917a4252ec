package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.IdentityBackend != BackendPostgres || cfg.Avatar.Backend != AvatarLocal {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.TTL != 5*time.Hour || cfg.Session.CookieName != "ticket_session" {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if !cfg.IsDevelopment() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoadFrom_Validation(t *testing.T) {
	cases := map[string]struct {
		env     map[string]string
		wantErr string
	}{
		"missing secret": {
			env:     map[string]string{},
			wantErr: "SESSION_SECRET",
		},
		"unknown identity backend": {
			env:     map[string]string{"SESSION_SECRET": "x", "IDENTITY_BACKEND": "ldap"},
			wantErr: "IDENTITY_BACKEND",
		},
		"s3 without bucket": {
			env:     map[string]string{"SESSION_SECRET": "x", "AVATAR_BACKEND": "s3"},
			wantErr: "S3_BUCKET",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error mentioning %s, got %v", tc.wantErr, err)
			}
		})
	}
}
