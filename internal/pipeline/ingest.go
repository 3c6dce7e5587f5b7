package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nhle/linkscan/internal/extract"
	"github.com/nhle/linkscan/internal/logging"
	"github.com/nhle/linkscan/internal/metrics"
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/source"
)

// fetchTimeout is the maximum time allowed for a single source call.
const fetchTimeout = 30 * time.Second

// MessageSaver is the part of the store ingestion writes to.
type MessageSaver interface {
	SaveMessage(
		ctx context.Context,
		msg model.Message,
		attachments []model.Attachment,
		links []model.ExtractedLink,
	) (bool, error)
}

// IngestResult summarizes one ingestion run.
type IngestResult struct {
	Listed      int
	Stored      int
	Duplicates  int
	Attachments int
	Links       int

	// Failed counts listed messages that could not be fetched.
	Failed int
}

// Ingester copies a batch of messages from a source into the store.
type Ingester struct {
	source   source.MessageSource
	store    MessageSaver
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
	progress Progress
}

// NewIngester creates an Ingester. log, m and progress may be nil.
func NewIngester(
	src source.MessageSource,
	s MessageSaver,
	log logrus.FieldLogger,
	m *metrics.Metrics,
	progress Progress,
) *Ingester {
	if log == nil {
		log = logging.Discard()
	}
	if progress == nil {
		progress = NopProgress{}
	}
	return &Ingester{
		source:   src,
		store:    s,
		log:      log.WithField("source", src.Type()),
		metrics:  m,
		progress: progress,
	}
}

// Run lists up to limit messages in folder and stores each one with its
// attachments and extracted links. Every message is committed on its
// own. A listing failure aborts before anything is written. A message
// that cannot be fetched is logged, counted in Failed and skipped.
func (in *Ingester) Run(
	ctx context.Context,
	folder string,
	limit int,
) (IngestResult, error) {
	var result IngestResult

	listCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	refs, err := in.source.List(listCtx, folder, limit)
	cancel()
	if err != nil {
		return result, fmt.Errorf("listing messages in %s: %w", folder, err)
	}

	result.Listed = len(refs)
	if len(refs) == 0 {
		in.log.WithField("folder", folder).Info("no messages found")
		return result, nil
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		getCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		raw, err := in.source.Get(getCtx, ref)
		cancel()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			in.log.WithError(err).WithField("message_id", ref.ID).
				Warn("skipping message that could not be fetched")
			result.Failed++
			continue
		}

		inserted, atts, links, err := in.ingestOne(ctx, raw)
		if err != nil {
			return result, err
		}

		if inserted {
			result.Stored++
		} else {
			result.Duplicates++
		}
		result.Attachments += atts
		result.Links += links
	}

	in.log.WithFields(logrus.Fields{
		"listed":      result.Listed,
		"stored":      result.Stored,
		"duplicates":  result.Duplicates,
		"attachments": result.Attachments,
		"links":       result.Links,
		"failed":      result.Failed,
	}).Info("ingestion finished")

	return result, nil
}

func (in *Ingester) ingestOne(
	ctx context.Context,
	raw *model.RawMessage,
) (inserted bool, attachments int, links int, err error) {
	log := in.log.WithField("message_id", raw.ID)

	msg := messageFromRaw(raw)
	urls := extract.URLs(msg.Body)

	extracted := make([]model.ExtractedLink, len(urls))
	for i, u := range urls {
		extracted[i] = model.ExtractedLink{EmailID: msg.ID, URL: u}
	}

	atts := in.fetchAttachments(ctx, log, raw)

	inserted, err = in.store.SaveMessage(ctx, msg, atts, extracted)
	if err != nil {
		return false, 0, 0, fmt.Errorf("storing message %s: %w", msg.ID, err)
	}

	if !inserted {
		log.Debug("message already stored")
	}
	log.WithFields(logrus.Fields{
		"urls":        len(urls),
		"attachments": len(atts),
	}).Info("message ingested")

	in.metrics.ObserveMessage(inserted, len(atts), len(extracted))
	in.progress.MessageStored(msg, urls, inserted)

	return inserted, len(atts), len(extracted), nil
}

// fetchAttachments downloads every attachment among the payload's
// direct children. Failed downloads are logged and skipped.
func (in *Ingester) fetchAttachments(
	ctx context.Context,
	log logrus.FieldLogger,
	raw *model.RawMessage,
) []model.Attachment {
	var atts []model.Attachment
	for _, part := range raw.Payload.Parts {
		if !part.IsAttachment() {
			continue
		}

		attCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		data, err := in.source.GetAttachment(attCtx, raw.ID, part.Body.AttachmentID)
		cancel()
		if err != nil {
			log.WithError(err).WithField("filename", part.Filename).
				Warn("skipping attachment")
			continue
		}

		atts = append(atts, model.Attachment{
			EmailID:  raw.ID,
			Filename: part.Filename,
			MIMEType: part.MIMEType,
			Data:     data,
		})
	}
	return atts
}

// messageFromRaw reads the header metadata and plain-text body of raw.
func messageFromRaw(raw *model.RawMessage) model.Message {
	return model.Message{
		ID:       raw.ID,
		ThreadID: raw.ThreadID,
		Subject:  raw.Payload.Header("Subject"),
		Sender:   raw.Payload.Header("From"),
		Date:     raw.Payload.Header("Date"),
		Body:     extract.Body(raw.Payload),
	}
}
