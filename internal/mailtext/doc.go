// Package mailtext turns raw RFC 822 messages into the plain text handed to
// the extraction model.
//
// Multipart bodies prefer text/plain parts over text/html; HTML is reduced
// to readable lines. Transfer encodings (base64, quoted-printable) and
// RFC 2047 encoded headers are decoded.
package mailtext
