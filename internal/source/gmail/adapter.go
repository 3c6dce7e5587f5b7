package gmail

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/nhle/linkscan/internal/extract"
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/source"
)

const (
	defaultLimit = 10

	// maxPageSize is the largest maxResults users.messages.list accepts.
	maxPageSize = 500
)

// Adapter implements source.MessageSource for a Gmail mailbox.
type Adapter struct {
	client *Client
	userID string
}

// NewAdapter creates a new Gmail source adapter. userID is usually "me".
func NewAdapter(client *Client, userID string) *Adapter {
	if userID == "" {
		userID = "me"
	}
	return &Adapter{client: client, userID: userID}
}

// Type returns the source type identifier for Gmail.
func (a *Adapter) Type() source.SourceType {
	return source.SourceTypeGmail
}

// List returns the newest messages carrying the folder label. Gmail
// pages are followed until limit references have been collected.
func (a *Adapter) List(
	ctx context.Context,
	folder string,
	limit int,
) ([]model.MessageRef, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var refs []model.MessageRef
	pageToken := ""
	for len(refs) < limit {
		pageSize := limit - len(refs)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		params := url.Values{}
		if folder != "" {
			params.Set("labelIds", folder)
		}
		params.Set("maxResults", strconv.Itoa(pageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp listResponse
		if err := a.client.Get(ctx, a.userPath("/messages")+"?"+params.Encode(), &resp); err != nil {
			return nil, a.wrap("list", err)
		}

		for _, m := range resp.Messages {
			refs = append(refs, model.MessageRef{ID: m.ID, ThreadID: m.ThreadID})
		}

		if resp.NextPageToken == "" || len(resp.Messages) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

// Get fetches the full payload tree of one message.
func (a *Adapter) Get(
	ctx context.Context,
	ref model.MessageRef,
) (*model.RawMessage, error) {
	var msg message
	path := a.userPath("/messages/"+url.PathEscape(ref.ID)) + "?format=full"
	if err := a.client.Get(ctx, path, &msg); err != nil {
		return nil, a.wrap("get", fmt.Errorf("message %s: %w", ref.ID, err))
	}

	threadID := msg.ThreadID
	if threadID == "" {
		threadID = ref.ThreadID
	}

	return &model.RawMessage{
		ID:       msg.ID,
		ThreadID: threadID,
		Payload:  msg.Payload.toModel(),
	}, nil
}

// GetAttachment downloads and decodes an attachment payload.
func (a *Adapter) GetAttachment(
	ctx context.Context,
	messageID, attachmentID string,
) ([]byte, error) {
	var att attachmentResponse
	path := a.userPath(fmt.Sprintf(
		"/messages/%s/attachments/%s",
		url.PathEscape(messageID), url.PathEscape(attachmentID),
	))
	if err := a.client.Get(ctx, path, &att); err != nil {
		return nil, a.wrap("attachment", fmt.Errorf("message %s: %w", messageID, err))
	}

	data, err := extract.DecodeBytes(att.Data)
	if err != nil {
		return nil, fmt.Errorf("decoding attachment %s of message %s: %w", attachmentID, messageID, err)
	}
	return data, nil
}

func (a *Adapter) userPath(suffix string) string {
	return "/gmail/v1/users/" + url.PathEscape(a.userID) + suffix
}

// wrap marks err as a transport failure unless it already carries an
// auth failure, which callers handle separately.
func (a *Adapter) wrap(op string, err error) error {
	if source.IsAuthError(err) {
		return err
	}
	return &source.TransportError{
		SourceType: source.SourceTypeGmail,
		Op:         op,
		Err:        err,
	}
}
