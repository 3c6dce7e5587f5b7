package email

import (
	"context"
	"fmt"
	"sync"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/source"
)

// defaultLimit applies when List is called with a non-positive limit.
const defaultLimit = 10

// Adapter implements source.MessageSource for an IMAP mailbox.
type Adapter struct {
	imapClient *IMAPClient

	// The most recently fetched message is kept so that attachment
	// downloads right after Get do not fetch it again.
	mu      sync.Mutex
	lastID  string
	lastRaw []byte
}

// NewAdapter creates a new IMAP source adapter.
func NewAdapter(
	host, port, username, password string,
	useTLS bool,
) *Adapter {
	return &Adapter{
		imapClient: NewIMAPClient(host, port, username, password, useTLS),
	}
}

// Type returns the source type identifier for IMAP.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeIMAP
}

// List returns references to the newest messages in folder. IDs have
// the form "folder/uid".
func (a *Adapter) List(
	ctx context.Context,
	folder string,
	limit int,
) ([]model.MessageRef, error) {
	if folder == "" {
		folder = "INBOX"
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	uids, err := a.imapClient.ListUIDs(ctx, folder, limit)
	if err != nil {
		return nil, a.wrap("list", err)
	}

	refs := make([]model.MessageRef, 0, len(uids))
	for _, uid := range uids {
		refs = append(refs, model.MessageRef{
			ID: messageID{Folder: folder, UID: uid}.String(),
		})
	}
	return refs, nil
}

// Get fetches and parses a message into its content-part tree.
func (a *Adapter) Get(
	ctx context.Context,
	ref model.MessageRef,
) (*model.RawMessage, error) {
	raw, err := a.fetch(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	payload, threadID, err := parseMessage(raw)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", ref.ID, err)
	}
	if threadID == "" {
		threadID = ref.ThreadID
	}

	return &model.RawMessage{
		ID:       ref.ID,
		ThreadID: threadID,
		Payload:  payload,
	}, nil
}

// GetAttachment returns the decoded payload of the part identified by
// attachmentID.
func (a *Adapter) GetAttachment(
	ctx context.Context,
	messageID, attachmentID string,
) ([]byte, error) {
	raw, err := a.fetch(ctx, messageID)
	if err != nil {
		return nil, err
	}

	data, err := readAttachment(raw, attachmentID)
	if err != nil {
		return nil, fmt.Errorf("message %s: %w", messageID, err)
	}
	return data, nil
}

func (a *Adapter) fetch(ctx context.Context, id string) ([]byte, error) {
	a.mu.Lock()
	if a.lastID == id && a.lastRaw != nil {
		raw := a.lastRaw
		a.mu.Unlock()
		return raw, nil
	}
	a.mu.Unlock()

	mid, err := parseMessageID(id)
	if err != nil {
		return nil, err
	}

	raw, err := a.imapClient.FetchRaw(ctx, mid.Folder, mid.UID)
	if err != nil {
		return nil, a.wrap("get", fmt.Errorf("message %s: %w", id, err))
	}

	a.mu.Lock()
	a.lastID, a.lastRaw = id, raw
	a.mu.Unlock()

	return raw, nil
}

// wrap marks err as a transport failure unless it already carries an
// auth failure, which callers handle separately.
func (a *Adapter) wrap(op string, err error) error {
	if source.IsAuthError(err) {
		return err
	}
	return &source.TransportError{
		SourceType: source.SourceTypeIMAP,
		Op:         op,
		Err:        err,
	}
}
