// Package google provides shared infrastructure for the Google API adapters.
//
// This package contains common utilities used by the gmail and sheets
// adapters including:
//   - TokenSource adapter to bridge the session TokenProvider to oauth2.TokenSource
//   - Service factories for creating Google API clients
//   - Error mapping for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
//	ts := google.NewTokenSource(ctx, tokenProvider)
//	svc, err := google.NewGmailService(ctx, ts)
//
// # OAuth2 Scopes
//
// The session token must carry these scopes:
//   - https://www.googleapis.com/auth/gmail.modify (read receipts, apply labels)
//   - https://www.googleapis.com/auth/spreadsheets
//   - https://www.googleapis.com/auth/drive.file (find and create the ledger spreadsheet)
package google
