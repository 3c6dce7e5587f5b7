package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nhle/linkscan/internal/model"
)

// HasVerdict reports whether url has already been checked.
func (s *SQLiteStore) HasVerdict(ctx context.Context, url string) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		"SELECT COUNT(*) FROM url_checks WHERE url = ?", url,
	)
	if err != nil {
		return false, fmt.Errorf("checking verdict for %s: %w", url, err)
	}
	return n > 0, nil
}

// PutVerdict stores a verdict. An existing verdict for the same URL is
// replaced rather than rejected.
func (s *SQLiteStore) PutVerdict(ctx context.Context, v model.LinkVerdict) error {
	if v.CheckedAt.IsZero() {
		v.CheckedAt = time.Now()
	}

	emailID := sql.NullString{String: v.EmailID, Valid: v.EmailID != ""}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO url_checks (
			url, email_id, is_safe, ipqs_result, gsb_result,
			unknown_sources, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.URL, emailID,
		boolToInt(v.IsSafe), boolToInt(v.IPQSSafe), boolToInt(v.GSBSafe),
		strings.Join(v.UnknownSources, ","), v.CheckedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing verdict for %s: %w", v.URL, err)
	}
	return nil
}

// GetVerdict retrieves the stored verdict for url.
func (s *SQLiteStore) GetVerdict(
	ctx context.Context,
	url string,
) (*model.LinkVerdict, error) {
	row := s.db.QueryRowxContext(ctx, `
		SELECT url, email_id, is_safe, ipqs_result, gsb_result,
			unknown_sources, checked_at
		FROM url_checks WHERE url = ?`, url)

	v, err := scanVerdict(row)
	if err != nil {
		return nil, fmt.Errorf("getting verdict for %s: %w", url, err)
	}
	return &v, nil
}

// ListVerdicts retrieves verdicts matching the filter, newest first.
func (s *SQLiteStore) ListVerdicts(
	ctx context.Context,
	filter VerdictFilter,
) ([]model.LinkVerdict, error) {
	var conditions []string
	var args []interface{}

	if filter.UnsafeOnly {
		conditions = append(conditions, "is_safe = 0")
	}
	if filter.EmailID != nil {
		conditions = append(conditions, "email_id = ?")
		args = append(args, *filter.EmailID)
	}

	query := `
		SELECT url, email_id, is_safe, ipqs_result, gsb_result,
			unknown_sources, checked_at
		FROM url_checks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY checked_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []model.LinkVerdict
	for rows.Next() {
		v, err := scanVerdict(rows)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}

// scanVerdict scans a url_checks row from either a sqlx.Row or sqlx.Rows.
func scanVerdict(row sqlx.ColScanner) (model.LinkVerdict, error) {
	var (
		v         model.LinkVerdict
		emailID   sql.NullString
		isSafe    int
		ipqs      int
		gsb       int
		unknown   string
		checkedAt time.Time
	)

	err := row.Scan(
		&v.URL, &emailID, &isSafe, &ipqs, &gsb, &unknown, &checkedAt,
	)
	if err != nil {
		return model.LinkVerdict{}, fmt.Errorf("scanning verdict row: %w", err)
	}

	v.EmailID = emailID.String
	v.IsSafe = isSafe != 0
	v.IPQSSafe = ipqs != 0
	v.GSBSafe = gsb != 0
	v.CheckedAt = checkedAt
	if unknown != "" {
		v.UnknownSources = strings.Split(unknown, ",")
	}
	return v, nil
}
