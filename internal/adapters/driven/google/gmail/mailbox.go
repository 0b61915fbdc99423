package gmail

import (
	"context"
	"encoding/base64"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/omniticket-cli/internal/adapters/driven/google"
	"github.com/custodia-labs/omniticket-cli/internal/core/ports/driven"
	"github.com/custodia-labs/omniticket-cli/internal/logger"
	"github.com/custodia-labs/omniticket-cli/internal/mailtext"
)

// Ensure Mailbox implements the interface.
var _ driven.Mailbox = (*Mailbox)(nil)

const (
	userID = "me"

	// pageSize is the threads.list page size.
	pageSize = 100

	// messageSeparator joins the messages of one thread.
	messageSeparator = "\n\n-----\n\n"
)

// Mailbox reads receipt threads from a Gmail account.
type Mailbox struct {
	svc     *gmail.Service
	limiter *google.RateLimiter

	mu     sync.Mutex
	labels map[string]string // label name -> id
}

// New creates a Mailbox. A nil limiter uses the Gmail defaults.
func New(svc *gmail.Service, limiter *google.RateLimiter) *Mailbox {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceGmail)
	}
	return &Mailbox{
		svc:     svc,
		limiter: limiter,
	}
}

// Search returns the ids of threads matching query, across all pages.
func (m *Mailbox) Search(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		call := m.svc.Users.Threads.List(userID).Q(query).MaxResults(pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, eris.Wrap(m.wrap(err), "gmail: list threads")
		}

		for _, thread := range resp.Threads {
			ids = append(ids, thread.Id)
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	logger.Debug("Gmail query %q matched %d threads", query, len(ids))
	return ids, nil
}

// FetchContent returns the decoded text of every message in the thread.
func (m *Mailbox) FetchContent(ctx context.Context, id string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}
	thread, err := m.svc.Users.Threads.Get(userID, id).Format("minimal").Context(ctx).Do()
	if err != nil {
		return "", eris.Wrapf(m.wrap(err), "gmail: get thread %s", id)
	}

	texts := make([]string, 0, len(thread.Messages))
	for _, summary := range thread.Messages {
		text, err := m.messageText(ctx, summary.Id)
		if err != nil {
			return "", err
		}
		if text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return "", eris.Errorf("gmail: thread %s has no readable content", id)
	}
	return strings.Join(texts, messageSeparator), nil
}

func (m *Mailbox) messageText(ctx context.Context, messageID string) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}
	msg, err := m.svc.Users.Messages.Get(userID, messageID).Format("raw").Context(ctx).Do()
	if err != nil {
		return "", eris.Wrapf(m.wrap(err), "gmail: get message %s", messageID)
	}

	raw, err := decodeRaw(msg.Raw)
	if err != nil {
		return "", eris.Wrapf(err, "gmail: decode message %s", messageID)
	}
	parsed, err := mailtext.Parse(raw)
	if err != nil {
		// Fall back to the snippet rather than losing the message.
		logger.Debug("Message %s is not parseable, using snippet: %v", messageID, err)
		return msg.Snippet, nil
	}
	return parsed.Text(), nil
}

// decodeRaw decodes the base64url RFC 2822 payload, padded or not.
func decodeRaw(raw string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
}

// ApplyLabel adds the named label to a thread, creating the label first when
// the account does not have it.
func (m *Mailbox) ApplyLabel(ctx context.Context, id, label string) error {
	labelID, err := m.labelID(ctx, label)
	if err != nil {
		return err
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err = m.svc.Users.Threads.Modify(userID, id, &gmail.ModifyThreadRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return eris.Wrapf(m.wrap(err), "gmail: label thread %s", id)
	}
	return nil
}

// labelID resolves a label name to its id, creating the label if needed.
// Resolved ids are cached for the life of the Mailbox.
func (m *Mailbox) labelID(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id, ok := m.labels[name]; ok {
		return id, nil
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}
	resp, err := m.svc.Users.Labels.List(userID).Context(ctx).Do()
	if err != nil {
		return "", eris.Wrap(m.wrap(err), "gmail: list labels")
	}

	if m.labels == nil {
		m.labels = make(map[string]string, len(resp.Labels))
	}
	for _, l := range resp.Labels {
		m.labels[l.Name] = l.Id
	}
	if id, ok := m.labels[name]; ok {
		return id, nil
	}

	if err := m.limiter.Wait(ctx); err != nil {
		return "", err
	}
	created, err := m.svc.Users.Labels.Create(userID, &gmail.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", eris.Wrapf(m.wrap(err), "gmail: create label %q", name)
	}

	logger.Info("Created Gmail label %q", name)
	m.labels[name] = created.Id
	return created.Id, nil
}

func (m *Mailbox) wrap(err error) error {
	return google.WrapError(m.limiter.Observe(err))
}
