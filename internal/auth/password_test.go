package auth

import (
	"errors"
	"testing"
)

func TestPasswordHashingLifecycle(t *testing.T) {
	password := "S3curePass!"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}
	if hash == "" {
		t.Fatal("expected hash to be populated")
	}

	if err := VerifyPassword(hash, password); err != nil {
		t.Fatalf("expected password to verify, got error: %v", err)
	}

	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected verification to fail for wrong password")
	}
}

func TestVerifyStoredPassword(t *testing.T) {
	hash, err := HashPassword("agent123")
	if err != nil {
		t.Fatalf("unexpected error hashing password: %v", err)
	}

	tests := []struct {
		name       string
		stored     string
		candidate  string
		wantRehash bool
		wantErr    bool
	}{
		{name: "hashed match", stored: hash, candidate: "agent123"},
		{name: "hashed mismatch", stored: hash, candidate: "nope", wantErr: true},
		{name: "legacy plaintext", stored: "admin123", candidate: "admin123", wantRehash: true},
		{name: "legacy mismatch", stored: "admin123", candidate: "admin", wantErr: true},
		{name: "empty stored", stored: "", candidate: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rehash, err := VerifyStoredPassword(tt.stored, tt.candidate)
			if tt.wantErr {
				if !errors.Is(err, ErrPasswordMismatch) {
					t.Fatalf("expected ErrPasswordMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rehash != tt.wantRehash {
				t.Fatalf("expected rehash=%v, got %v", tt.wantRehash, rehash)
			}
		})
	}
}
