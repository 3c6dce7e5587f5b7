package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nhle/linkscan/internal/model"
)

// SaveMessage inserts the message if its ID is new, then inserts every
// attachment and link row, all in one transaction. Child rows are not
// deduplicated: saving the same message twice duplicates them.
func (s *SQLiteStore) SaveMessage(
	ctx context.Context,
	msg model.Message,
	attachments []model.Attachment,
	links []model.ExtractedLink,
) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO emails (id, thread_id, subject, sender, date, body)
		VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.ThreadID, msg.Subject, msg.Sender, msg.Date, msg.Body,
	)
	if err != nil {
		return false, fmt.Errorf("inserting email %s: %w", msg.ID, err)
	}
	rows, _ := result.RowsAffected()

	for _, a := range attachments {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attachments (id, email_id, filename, mime_type, data)
			VALUES (?, ?, ?, ?, ?)`,
			a.ID, msg.ID, a.Filename, a.MIMEType, a.Data,
		)
		if err != nil {
			return false, fmt.Errorf("inserting attachment %q for email %s: %w", a.Filename, msg.ID, err)
		}
	}

	if len(links) > 0 {
		stmt, err := tx.PreparexContext(ctx,
			"INSERT INTO urls (id, email_id, url) VALUES (?, ?, ?)",
		)
		if err != nil {
			return false, fmt.Errorf("preparing url insert: %w", err)
		}
		defer stmt.Close()

		for _, l := range links {
			if l.ID == "" {
				l.ID = uuid.New().String()
			}
			if _, err := stmt.ExecContext(ctx, l.ID, msg.ID, l.URL); err != nil {
				return false, fmt.Errorf("inserting url for email %s: %w", msg.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing email %s: %w", msg.ID, err)
	}
	return rows > 0, nil
}

// GetMessage retrieves a single message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id string) (*model.Message, error) {
	var msg model.Message
	err := s.db.GetContext(ctx, &msg, `
		SELECT id, thread_id, subject, sender, date, body
		FROM emails WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("getting email %s: %w", id, err)
	}
	return &msg, nil
}

// OldestMessage returns the first message ever inserted. It returns
// ErrNoMessages when the store is empty.
func (s *SQLiteStore) OldestMessage(ctx context.Context) (*model.Message, error) {
	var msg model.Message
	err := s.db.GetContext(ctx, &msg, `
		SELECT id, thread_id, subject, sender, date, body
		FROM emails ORDER BY rowid ASC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoMessages
	}
	if err != nil {
		return nil, fmt.Errorf("getting oldest email: %w", err)
	}
	return &msg, nil
}

// CountMessages returns the number of stored messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM emails"); err != nil {
		return 0, fmt.Errorf("counting emails: %w", err)
	}
	return n, nil
}

// GetAttachments returns a message's attachments in insertion order.
func (s *SQLiteStore) GetAttachments(
	ctx context.Context,
	emailID string,
) ([]model.Attachment, error) {
	var attachments []model.Attachment
	err := s.db.SelectContext(ctx, &attachments, `
		SELECT id, email_id, filename, mime_type, data
		FROM attachments WHERE email_id = ? ORDER BY rowid`, emailID)
	if err != nil {
		return nil, fmt.Errorf("querying attachments for email %s: %w", emailID, err)
	}
	return attachments, nil
}

// GetLinks returns a message's extracted links in insertion order.
func (s *SQLiteStore) GetLinks(
	ctx context.Context,
	emailID string,
) ([]model.ExtractedLink, error) {
	var links []model.ExtractedLink
	err := s.db.SelectContext(ctx, &links, `
		SELECT id, email_id, url
		FROM urls WHERE email_id = ? ORDER BY rowid`, emailID)
	if err != nil {
		return nil, fmt.Errorf("querying urls for email %s: %w", emailID, err)
	}
	return links, nil
}
