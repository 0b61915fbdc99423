// Package session persists the per-user client state between runs: the
// Google OAuth token and the resolved spreadsheet id. It is stored as TOML
// with owner-only permissions.
//
// The token file is produced outside this tool (for example by the OAuth
// playground or gcloud) and consumed here; only refreshed tokens are
// written back.
package session
