package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nadscarim/task-management/internal/core/domain"
)

func TestSessionSweeper_Sweep(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	tokens := newStubTokenRepo(newStubUserRepo())
	tokens.rows = []*domain.RefreshToken{
		{Token: "stale", UserID: "u", ExpiresAt: now.Add(-time.Hour)},
		{Token: "fresh", UserID: "u", ExpiresAt: now.Add(time.Hour)},
		{Token: "edge", UserID: "u", ExpiresAt: now},
	}

	sweeper := NewSessionSweeper(tokens, zerolog.Nop())
	sweeper.now = func() time.Time { return now }

	n, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned, got %d", n)
	}
	if len(tokens.rows) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(tokens.rows))
	}
	for _, row := range tokens.rows {
		if row.Token == "stale" {
			t.Fatal("stale token survived")
		}
	}
}
