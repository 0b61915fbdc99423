package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes are the OAuth2 scopes the session token must carry.
var Scopes = []string{
	gmail.GmailModifyScope,
	sheets.SpreadsheetsScope,
	drive.DriveFileScope,
}

// NewGmailService creates a Gmail API service using the provided TokenSource.
// Extra options (endpoint, HTTP client) are applied after the token source.
func NewGmailService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*gmail.Service, error) {
	return gmail.NewService(ctx, clientOptions(ts, opts)...)
}

// NewSheetsService creates a Google Sheets API service.
func NewSheetsService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*sheets.Service, error) {
	return sheets.NewService(ctx, clientOptions(ts, opts)...)
}

// NewDriveService creates a Google Drive API service.
func NewDriveService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	return drive.NewService(ctx, clientOptions(ts, opts)...)
}

func clientOptions(ts oauth2.TokenSource, extra []option.ClientOption) []option.ClientOption {
	opts := make([]option.ClientOption, 0, len(extra)+1)
	if ts != nil {
		opts = append(opts, option.WithTokenSource(ts))
	}
	return append(opts, extra...)
}
