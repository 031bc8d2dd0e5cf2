package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nadscarim/task-management/internal/core/ports"
)

// SessionSweeper prunes refresh tokens that can no longer be redeemed.
type SessionSweeper struct {
	tokens ports.RefreshTokenRepository
	log    zerolog.Logger
	now    func() time.Time
}

func NewSessionSweeper(tokens ports.RefreshTokenRepository, log zerolog.Logger) *SessionSweeper {
	return &SessionSweeper{tokens: tokens, log: log, now: time.Now}
}

// Sweep deletes expired refresh tokens and reports how many were removed.
func (s *SessionSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.tokens.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	if n > 0 {
		s.log.Info().Int64("pruned", n).Msg("expired refresh tokens pruned")
	}
	return n, nil
}
