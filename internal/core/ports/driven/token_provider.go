package driven

import "context"

// TokenProvider provides access tokens for authenticated API calls.
// Implementations handle token refresh transparently.
type TokenProvider interface {
	// GetToken returns a valid access token.
	// If the current token is expired, it will be refreshed automatically.
	GetToken(ctx context.Context) (string, error)

	// IsAuthenticated returns true if a usable token is available.
	IsAuthenticated() bool
}

// SessionStore persists the per-user session between runs.
type SessionStore interface {
	// Load returns the saved session. A missing session is not an error.
	Load() (*Session, error)

	// Save writes the session.
	Save(session *Session) error
}

// Session is the explicit client state carried between runs.
type Session struct {
	AccessToken   string
	RefreshToken  string
	TokenType     string
	Expiry        int64
	SpreadsheetID string
}
