package driven

import "context"

// Mailbox is the source of receipt emails.
type Mailbox interface {
	// Search returns the ids of items matching a provider query, in the
	// order the provider lists them.
	Search(ctx context.Context, query string) ([]string, error)

	// FetchContent returns the decoded text of an item, with any transport
	// encoding removed.
	FetchContent(ctx context.Context, id string) (string, error)

	// ApplyLabel tags an item, creating the label if it does not exist.
	ApplyLabel(ctx context.Context, id, label string) error
}
