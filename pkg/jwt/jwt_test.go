package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "kasir@tokoemas.id", "Kasir", "CASHIER", []string{"sale:view"}, "v1")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != id || claims.RoleCode != "CASHIER" || claims.TokenVersion != "v1" || len(claims.Privileges) != 1 {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, err := m.GenerateToken(uuid.New(), "a@b.c", "A", "OWNER", nil, "v1")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewManager("other", time.Hour).ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: got %v", err)
	}
	if _, err := m.ValidateToken(""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("empty token: got %v", err)
	}

	expired, err := NewManager("secret", -time.Minute).GenerateToken(uuid.New(), "a@b.c", "A", "OWNER", nil, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.ValidateToken(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: got %v", err)
	}
}
