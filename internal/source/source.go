package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/linkscan/internal/model"
)

// SourceType identifies the kind of mailbox a MessageSource reads.
type SourceType string

const (
	SourceTypeGmail SourceType = "gmail"
	SourceTypeIMAP  SourceType = "imap"
)

// AuthError indicates that authentication has failed or expired for a source.
// It is returned by source clients when a 401 response is received.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// TransportError reports that the mailbox could not be reached or
// returned an unusable response. Op names the failed operation
// ("list", "get", "attachment").
type TransportError struct {
	SourceType SourceType
	Op         string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.SourceType, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err (or any error in its chain) is a
// TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// MessageSource is an authenticated mailbox that messages are ingested
// from.
type MessageSource interface {
	// Type returns the source type identifier.
	Type() SourceType

	// List returns references to at most limit messages in folder,
	// newest first. An empty folder yields an empty slice.
	List(ctx context.Context, folder string, limit int) ([]model.MessageRef, error)

	// Get fetches the full content-part tree of a message.
	Get(ctx context.Context, ref model.MessageRef) (*model.RawMessage, error)

	// GetAttachment fetches the decoded payload of an attachment part.
	GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}
