package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expiryBuffer refreshes tokens this long before they expire
const expiryBuffer = 60 * time.Second

// TokenSaver persists refreshed tokens. *store.Store implements it.
type TokenSaver interface {
	UpdateTokens(ctx context.Context, accessToken, refreshToken string, expiresAt time.Time) error
}

// TokenSource refreshes tokens as needed and persists every new token
type TokenSource struct {
	config *oauth2.Config
	saver  TokenSaver

	mu    sync.Mutex
	token *oauth2.Token
	now   func() time.Time
}

// NewTokenSource creates a TokenSource seeded with token
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, saver TokenSaver) *TokenSource {
	return &TokenSource{
		config: cfg,
		saver:  saver,
		token:  token,
		now:    time.Now,
	}
}

// Token returns a valid token, refreshing if necessary
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.token.Expiry.Sub(ts.now()) > expiryBuffer {
		return ts.token, nil
	}

	ctx := context.Background()
	// Force a refresh by presenting the token as already expired
	stale := *ts.token
	stale.Expiry = ts.now().Add(-time.Second)
	newToken, err := ts.config.TokenSource(ctx, &stale).Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	if ts.saver != nil {
		if err := ts.saver.UpdateTokens(ctx, newToken.AccessToken, newToken.RefreshToken, newToken.Expiry); err != nil {
			return nil, fmt.Errorf("saving refreshed token: %w", err)
		}
	}

	ts.token = newToken
	return newToken, nil
}

// IsExpired checks if the current token is expired or will expire within the buffer
func (ts *TokenSource) IsExpired() bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.token.Expiry.Sub(ts.now()) <= expiryBuffer
}
