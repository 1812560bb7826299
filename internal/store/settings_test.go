package store

import (
	"context"
	"testing"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
)

func TestSecret_GeneratesAndPersists(t *testing.T) {
	s := NewSQLite(db.NewTestDB(t))
	ctx := context.Background()

	secret1, err := s.Secret(ctx, SettingSessionSecret)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := s.Secret(ctx, SettingSessionSecret)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}

	other, err := s.Secret(ctx, "other")
	if err != nil {
		t.Fatal(err)
	}
	if other == secret1 {
		t.Fatal("expected distinct secrets per key")
	}
}
