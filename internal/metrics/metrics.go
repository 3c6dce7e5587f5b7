package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "linkscan"

// Metrics holds the counters a run updates. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	MessagesIngested  prometheus.Counter
	AttachmentsStored prometheus.Counter
	LinksExtracted    prometheus.Counter
	LinksSkipped      prometheus.Counter
	OracleChecks      *prometheus.CounterVec
	OracleLatency     *prometheus.HistogramVec
	Verdicts          *prometheus.CounterVec
}

// New creates the metric set on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		MessagesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_ingested_total",
			Help:      "Messages newly stored by ingestion.",
		}),
		AttachmentsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_stored_total",
			Help:      "Attachment payloads stored by ingestion.",
		}),
		LinksExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_extracted_total",
			Help:      "URL occurrences extracted from message bodies.",
		}),
		LinksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_skipped_total",
			Help:      "URLs skipped by verification because a verdict already existed.",
		}),
		OracleChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_checks_total",
			Help:      "Reputation oracle calls by oracle and outcome.",
		}, []string{"oracle", "outcome"}),
		OracleLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oracle_check_seconds",
			Help:      "Reputation oracle call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"oracle"}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Consensus verdicts recorded, by verdict.",
		}, []string{"verdict"}),
	}

	m.registry.MustRegister(
		m.MessagesIngested,
		m.AttachmentsStored,
		m.LinksExtracted,
		m.LinksSkipped,
		m.OracleChecks,
		m.OracleLatency,
		m.Verdicts,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in the text exposition format
// to path, for pickup by a textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}

// ObserveMessage records one saved message. Attachment and link rows
// are written even for a message that was already stored.
func (m *Metrics) ObserveMessage(inserted bool, attachments, links int) {
	if m == nil {
		return
	}
	if inserted {
		m.MessagesIngested.Inc()
	}
	m.AttachmentsStored.Add(float64(attachments))
	m.LinksExtracted.Add(float64(links))
}

func (m *Metrics) ObserveSkip() {
	if m == nil {
		return
	}
	m.LinksSkipped.Inc()
}

func (m *Metrics) ObserveVerdict(safe bool) {
	if m == nil {
		return
	}
	label := "unsafe"
	if safe {
		label = "safe"
	}
	m.Verdicts.WithLabelValues(label).Inc()
}
