package model

import "time"

// Oracle names used as per-oracle result keys and in persisted columns.
const (
	OracleIPQS         = "ipqs"
	OracleSafeBrowsing = "gsb"
)

// LinkVerdict is the stored outcome of checking a URL against all
// configured oracles. It is keyed by URL globally.
type LinkVerdict struct {
	URL       string    `json:"url" db:"url"`
	EmailID   string    `json:"email_id,omitempty" db:"email_id"`
	IsSafe    bool      `json:"is_safe" db:"is_safe"`
	IPQSSafe  bool      `json:"ipqs_result" db:"ipqs_result"`
	GSBSafe   bool      `json:"gsb_result" db:"gsb_result"`
	CheckedAt time.Time `json:"checked_at" db:"checked_at"`

	// UnknownSources lists oracles whose answer was Unknown. It is
	// recorded for auditing only; Unknown already counts as unsafe.
	UnknownSources []string `json:"unknown_sources,omitempty" db:"-"`
}
