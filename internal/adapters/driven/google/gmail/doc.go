// Package gmail implements the Mailbox port over the Gmail API.
//
// Receipts are addressed by thread id. A thread's content is the decoded
// text of every message in it, oldest first, so forwarded receipts keep the
// original message alongside the forward.
package gmail
