package model

import "strings"

// Header is a single name/value pair from a message part.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PartBody holds the payload of a content part. Data is URL-safe base64
// when present; AttachmentID is set instead when the payload has to be
// fetched separately from the message source.
type PartBody struct {
	AttachmentID string `json:"attachment_id,omitempty"`
	Size         int    `json:"size,omitempty"`
	Data         string `json:"data,omitempty"`
}

// HasData reports whether the part carries inline data.
func (b PartBody) HasData() bool {
	return b.Data != ""
}

// Part is one node of a message's content-part tree.
type Part struct {
	PartID   string   `json:"part_id,omitempty"`
	MIMEType string   `json:"mime_type"`
	Filename string   `json:"filename,omitempty"`
	Headers  []Header `json:"headers,omitempty"`
	Body     PartBody `json:"body"`
	Parts    []Part   `json:"parts,omitempty"`
}

// Header returns the value of the first header matching name
// case-insensitively, or "" when absent.
func (p Part) Header(name string) string {
	for _, h := range p.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// IsAttachment reports whether the part is a downloadable attachment.
func (p Part) IsAttachment() bool {
	return p.Filename != "" && p.Body.AttachmentID != ""
}

// MessageRef identifies a message in the source before it is fetched.
type MessageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
}

// RawMessage is a message as delivered by the message source.
type RawMessage struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	Payload  Part   `json:"payload"`
}

// Message is a stored email. Body is the extracted plain text.
type Message struct {
	ID       string `json:"id" db:"id"`
	ThreadID string `json:"thread_id" db:"thread_id"`
	Subject  string `json:"subject" db:"subject"`
	Sender   string `json:"sender" db:"sender"`
	Date     string `json:"date" db:"date"`
	Body     string `json:"body" db:"body"`
}

// Attachment is a binary payload that belongs to a stored message.
type Attachment struct {
	ID       string `json:"id" db:"id"`
	EmailID  string `json:"email_id" db:"email_id"`
	Filename string `json:"filename" db:"filename"`
	MIMEType string `json:"mime_type" db:"mime_type"`
	Data     []byte `json:"-" db:"data"`
}

// ExtractedLink is a URL occurrence found in a message body, stored
// verbatim.
type ExtractedLink struct {
	ID      string `json:"id" db:"id"`
	EmailID string `json:"email_id" db:"email_id"`
	URL     string `json:"url" db:"url"`
}
