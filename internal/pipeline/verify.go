package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/linkscan/internal/logging"
	"github.com/nhle/linkscan/internal/metrics"
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/oracle"
)

// VerdictStore is the part of the store verification reads and writes.
type VerdictStore interface {
	OldestMessage(ctx context.Context) (*model.Message, error)
	GetLinks(ctx context.Context, emailID string) ([]model.ExtractedLink, error)
	HasVerdict(ctx context.Context, url string) (bool, error)
	PutVerdict(ctx context.Context, v model.LinkVerdict) error
}

// Checker produces a consensus verdict for a URL. oracle.Panel is the
// production implementation.
type Checker interface {
	Check(ctx context.Context, url string) oracle.Consensus
}

// VerifyResult summarizes one verification run.
type VerifyResult struct {
	MessageID string
	Links     int
	Skipped   int
	Safe      int
	Unsafe    int
}

// Checked returns the number of URLs sent to the oracles.
func (r VerifyResult) Checked() int {
	return r.Safe + r.Unsafe
}

// Verifier checks the links of one stored message per run.
type Verifier struct {
	store    VerdictStore
	checker  Checker
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	progress Progress
	now      func() time.Time
}

// NewVerifier creates a Verifier. log, m and progress may be nil.
func NewVerifier(
	s VerdictStore,
	checker Checker,
	log logrus.FieldLogger,
	m *metrics.Metrics,
	progress Progress,
) *Verifier {
	if log == nil {
		log = logging.Discard()
	}
	if progress == nil {
		progress = NopProgress{}
	}
	return &Verifier{
		store:    s,
		checker:  checker,
		log:      log,
		metrics:  m,
		progress: progress,
		now:      time.Now,
	}
}

// Run selects the oldest stored message and checks each of its links
// in insertion order. A URL that already has a verdict is skipped
// without contacting any oracle. Each verdict is stored as soon as it
// is known. It returns store.ErrNoMessages when the store is empty.
func (v *Verifier) Run(ctx context.Context) (VerifyResult, error) {
	var result VerifyResult

	msg, err := v.store.OldestMessage(ctx)
	if err != nil {
		return result, fmt.Errorf("selecting message to verify: %w", err)
	}
	result.MessageID = msg.ID

	links, err := v.store.GetLinks(ctx, msg.ID)
	if err != nil {
		return result, fmt.Errorf("loading links of message %s: %w", msg.ID, err)
	}
	result.Links = len(links)

	log := v.log.WithField("message_id", msg.ID)
	log.WithField("links", len(links)).Info("verifying message links")
	v.progress.VerifyStarted(*msg, len(links))

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		seen, err := v.store.HasVerdict(ctx, link.URL)
		if err != nil {
			return result, err
		}
		if seen {
			log.WithField("url", link.URL).Debug("already checked")
			result.Skipped++
			v.metrics.ObserveSkip()
			v.progress.URLSkipped(link.URL)
			continue
		}

		c := v.checker.Check(ctx, link.URL)
		if err := v.store.PutVerdict(ctx, verdictFromConsensus(c, msg.ID, v.now())); err != nil {
			return result, err
		}

		if c.Safe {
			result.Safe++
		} else {
			result.Unsafe++
		}
		v.logConsensus(log, c)
		v.metrics.ObserveVerdict(c.Safe)
		v.progress.URLChecked(c)
	}

	log.WithFields(logrus.Fields{
		"checked": result.Checked(),
		"skipped": result.Skipped,
		"unsafe":  result.Unsafe,
	}).Info("verification finished")

	return result, nil
}

func (v *Verifier) logConsensus(log logrus.FieldLogger, c oracle.Consensus) {
	entry := log.WithFields(logrus.Fields{
		"url":  c.URL,
		"safe": c.Safe,
	})
	if unknown := c.Unknown(); len(unknown) > 0 {
		entry.WithField("unknown_oracles", unknown).
			Warn("oracle could not answer; recorded as unsafe")
		return
	}
	entry.Info("url checked")
}

// verdictFromConsensus maps a consensus onto the stored verdict row.
func verdictFromConsensus(c oracle.Consensus, emailID string, at time.Time) model.LinkVerdict {
	return model.LinkVerdict{
		URL:            c.URL,
		EmailID:        emailID,
		IsSafe:         c.Safe,
		IPQSSafe:       c.Result(model.OracleIPQS),
		GSBSafe:        c.Result(model.OracleSafeBrowsing),
		CheckedAt:      at,
		UnknownSources: c.Unknown(),
	}
}
