package store

import (
	"context"
	"errors"

	"github.com/nhle/linkscan/internal/model"
)

// ErrNoMessages is returned when a query needs a message and the store
// has none.
var ErrNoMessages = errors.New("no messages in store")

// VerdictFilter controls filtering and pagination for verdict queries.
type VerdictFilter struct {
	UnsafeOnly bool
	EmailID    *string
	Limit      int
	Offset     int
}

// Store defines the persistence interface for ingested messages, their
// attachments and links, and the global URL verdict cache.
type Store interface {
	// === Messages ===

	// SaveMessage commits a message with its attachments and links in
	// one transaction. The message row is insert-or-ignore; child rows
	// are always inserted. It reports whether the message row was new.
	SaveMessage(
		ctx context.Context,
		msg model.Message,
		attachments []model.Attachment,
		links []model.ExtractedLink,
	) (bool, error)
	GetMessage(ctx context.Context, id string) (*model.Message, error)
	OldestMessage(ctx context.Context) (*model.Message, error)
	CountMessages(ctx context.Context) (int, error)
	GetAttachments(ctx context.Context, emailID string) ([]model.Attachment, error)
	GetLinks(ctx context.Context, emailID string) ([]model.ExtractedLink, error)

	// === Verdicts ===

	HasVerdict(ctx context.Context, url string) (bool, error)
	PutVerdict(ctx context.Context, v model.LinkVerdict) error
	GetVerdict(ctx context.Context, url string) (*model.LinkVerdict, error)
	ListVerdicts(ctx context.Context, filter VerdictFilter) ([]model.LinkVerdict, error)

	Close() error
}
