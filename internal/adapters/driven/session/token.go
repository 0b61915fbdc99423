package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/custodia-labs/omniticket-cli/internal/core/domain"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
)

// Ensure TokenProvider implements the interface.
var _ driven.TokenProvider = (*TokenProvider)(nil)

// OAuthClient identifies the OAuth client used to refresh tokens. Without a
// client id, tokens are used until they expire and never refreshed.
type OAuthClient struct {
	ClientID     string
	ClientSecret string

	// Endpoint defaults to Google's.
	Endpoint oauth2.Endpoint
}

// TokenProvider serves the session's access token, refreshing it through
// the OAuth client when it has expired and saving the refreshed token.
type TokenProvider struct {
	store  driven.SessionStore
	config *oauth2.Config

	mu sync.Mutex
}

// NewTokenProvider creates a TokenProvider over the session store.
func NewTokenProvider(store driven.SessionStore, client OAuthClient) *TokenProvider {
	p := &TokenProvider{store: store}
	if client.ClientID != "" {
		endpoint := client.Endpoint
		if endpoint.TokenURL == "" {
			endpoint = google.Endpoint
		}
		p.config = &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			Endpoint:     endpoint,
		}
	}
	return p
}

// GetToken returns a valid access token.
func (p *TokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sess, err := p.store.Load()
	if err != nil {
		return "", err
	}
	if sess.AccessToken == "" && sess.RefreshToken == "" {
		return "", domain.ErrAuthRequired
	}

	tok := toOAuth(sess)
	if tok.Valid() {
		return tok.AccessToken, nil
	}
	if p.config == nil || tok.RefreshToken == "" {
		return "", fmt.Errorf("%w: access token expired", domain.ErrAuthRequired)
	}

	fresh, err := p.config.TokenSource(ctx, tok).Token()
	if err != nil {
		return "", fmt.Errorf("%w: refresh token: %v", domain.ErrAuthInvalid, err)
	}

	sess.AccessToken = fresh.AccessToken
	if fresh.RefreshToken != "" {
		sess.RefreshToken = fresh.RefreshToken
	}
	sess.TokenType = fresh.TokenType
	sess.Expiry = 0
	if !fresh.Expiry.IsZero() {
		sess.Expiry = fresh.Expiry.Unix()
	}
	if err := p.store.Save(sess); err != nil {
		logger.Warn("Failed to save refreshed token: %v", err)
	}

	logger.Debug("Refreshed access token, valid until %s", fresh.Expiry.Format(time.RFC3339))
	return fresh.AccessToken, nil
}

// IsAuthenticated returns true if the session holds a token.
func (p *TokenProvider) IsAuthenticated() bool {
	sess, err := p.store.Load()
	if err != nil {
		return false
	}
	return sess.AccessToken != "" || sess.RefreshToken != ""
}

func toOAuth(sess *driven.Session) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		TokenType:    sess.TokenType,
	}
	if sess.Expiry > 0 {
		tok.Expiry = time.Unix(sess.Expiry, 0)
	}
	return tok
}
