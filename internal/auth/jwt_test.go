package auth

import (
	"errors"
	"insurance/internal/entity/db"
	"testing"
	"time"
)

func TestNewManagerAndTokenLifecycle(t *testing.T) {
	mgr, err := NewManager("test-secret", "issuer", time.Minute*30)
	if err != nil {
		t.Fatalf("unexpected error creating manager: %v", err)
	}

	user := &db.User{ID: 42, Username: "admin", Name: "管理员", Role: db.UserRoleAdmin}
	token, expiresAt, err := mgr.GenerateToken(user)
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if expiresAt.Before(time.Now()) {
		t.Fatal("expected future expiry time")
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("unexpected error parsing token: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != user.Username || claims.Name != user.Name {
		t.Fatalf("claims mismatch: %+v", claims)
	}
	if claims.Role != user.Role {
		t.Fatalf("expected role %s, got %s", user.Role, claims.Role)
	}
}

func TestParseTokenFailures(t *testing.T) {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	issuer, _ := NewManager("secret-a", "we-insurance", time.Hour)
	issuer.SetClock(func() time.Time { return base })

	token, _, err := issuer.GenerateToken(&db.User{ID: 1, Username: "AG000001", Role: db.UserRoleAgent})
	if err != nil {
		t.Fatalf("unexpected error generating token: %v", err)
	}

	foreignSecret, _ := NewManager("secret-b", "we-insurance", time.Hour)
	foreignSecret.SetClock(func() time.Time { return base })
	foreignIssuer, _ := NewManager("secret-a", "other", time.Hour)
	foreignIssuer.SetClock(func() time.Time { return base })
	later, _ := NewManager("secret-a", "we-insurance", time.Hour)
	later.SetClock(func() time.Time { return base.Add(2 * time.Hour) })

	tests := []struct {
		name    string
		mgr     *Manager
		token   string
		wantErr error
	}{
		{name: "其他密钥签名", mgr: foreignSecret, token: token, wantErr: ErrInvalidToken},
		{name: "签发方不一致", mgr: foreignIssuer, token: token, wantErr: ErrInvalidToken},
		{name: "令牌过期", mgr: later, token: token, wantErr: ErrTokenExpired},
		{name: "格式错误", mgr: issuer, token: "not-a-jwt", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mgr.ParseToken(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGenerateTokenRejectsUnknownRole(t *testing.T) {
	mgr, _ := NewManager("secret", "", time.Hour)
	if _, _, err := mgr.GenerateToken(&db.User{ID: 3, Username: "x", Role: "guest"}); err == nil {
		t.Fatal("expected error for unknown role")
	}
	if _, _, err := mgr.GenerateToken(&db.User{Role: db.UserRoleAdmin}); err == nil {
		t.Fatal("expected error for unsaved user")
	}
}

func TestNewManagerRequiresSecret(t *testing.T) {
	if _, err := NewManager("   ", "", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
