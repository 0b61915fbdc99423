package mailtext

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// ErrUnreadable is returned when a message cannot be parsed at all.
var ErrUnreadable = errors.New("mailtext: unreadable message")

// Message is the decoded text of one email.
type Message struct {
	From    string
	Subject string
	Date    string
	Body    string
}

// Parse decodes a raw RFC 822 message.
func Parse(raw []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrUnreadable
	}

	body, err := extractBody(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, err
	}

	return &Message{
		From:    decodeHeader(msg.Header.Get("From")),
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Date:    msg.Header.Get("Date"),
		Body:    strings.TrimSpace(body),
	}, nil
}

// Text renders the message as a header block followed by the body.
func (m *Message) Text() string {
	var b strings.Builder
	writeHeader(&b, "From", m.From)
	writeHeader(&b, "Date", m.Date)
	writeHeader(&b, "Subject", m.Subject)
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(m.Body)
	return strings.TrimSpace(b.String())
}

func writeHeader(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// decodeTransfer undoes a Content-Transfer-Encoding.
func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newlineStripper{r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so wrapped base64 decodes cleanly.
type newlineStripper struct{ r io.Reader }

func (n newlineStripper) Read(p []byte) (int, error) {
	count, err := n.r.Read(p)
	out := 0
	for _, c := range p[:count] {
		if c != '\r' && c != '\n' {
			p[out] = c
			out++
		}
	}
	return out, err
}

func extractBody(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		body, readErr := io.ReadAll(decodeTransfer(r, encoding))
		if readErr != nil {
			return "", ErrUnreadable
		}
		return string(body), nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return extractMultipart(r, params["boundary"]), nil
	}

	body, err := io.ReadAll(decodeTransfer(r, encoding))
	if err != nil {
		return "", ErrUnreadable
	}
	if mediaType == "text/html" {
		return StripHTML(string(body)), nil
	}
	return string(body), nil
}

// extractMultipart collects text parts, preferring plain text over HTML.
// Attachments and unreadable parts are skipped.
func extractMultipart(r io.Reader, boundary string) string {
	if boundary == "" {
		return ""
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string

	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "text/plain"
		}
		if isAttachment(part) {
			part.Close()
			continue
		}

		content, readErr := io.ReadAll(decodeTransfer(part, part.Header.Get("Content-Transfer-Encoding")))
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, StripHTML(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			if nested := extractMultipart(bytes.NewReader(content), params["boundary"]); nested != "" {
				textParts = append(textParts, nested)
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n")
	}
	return strings.Join(htmlParts, "\n")
}

func isAttachment(part *multipart.Part) bool {
	disposition, _, err := mime.ParseMediaType(part.Header.Get("Content-Disposition"))
	return err == nil && disposition == "attachment"
}
