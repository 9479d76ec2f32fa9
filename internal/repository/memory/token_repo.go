package memory

import (
	"context"
	"time"

	"github.com/iliyamo/parking-lot-reservation/internal/model"
	"github.com/iliyamo/parking-lot-reservation/internal/repository"
)

// TokenRepo implements repository.TokenRepository on the in-memory
// tables, keyed by token hash.
type TokenRepo struct{ s *Store }

// StoreRefresh records a refresh token hash for the user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	defer r.s.lock()()
	r.s.t.tokens[tokenHash] = model.RefreshToken{
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// ValidateRefresh returns the owning user id when a non-revoked,
// non-expired token with this hash exists.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error) {
	defer r.s.rlock()()
	tok, ok := r.s.t.tokens[tokenHash]
	if !ok || tok.RevokedAt != nil || time.Now().UTC().After(tok.ExpiresAt) {
		return 0, repository.ErrTokenInvalid
	}
	return tok.UserID, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	defer r.s.lock()()
	tok, ok := r.s.t.tokens[tokenHash]
	if !ok || tok.RevokedAt != nil {
		return nil
	}
	now := time.Now().UTC()
	tok.RevokedAt = &now
	r.s.t.tokens[tokenHash] = tok
	return nil
}

// RevokeAllForUser revokes all of the user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	defer r.s.lock()()
	now := time.Now().UTC()
	for hash, tok := range r.s.t.tokens {
		if tok.UserID == userID && tok.RevokedAt == nil {
			tok.RevokedAt = &now
			r.s.t.tokens[hash] = tok
		}
	}
	return nil
}
