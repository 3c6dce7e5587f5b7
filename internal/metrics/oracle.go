package metrics

import (
	"context"
	"time"

	"github.com/nhle/linkscan/internal/oracle"
)

type instrumented struct {
	oracle.Oracle
	m *Metrics
}

// Instrument wraps o so every Check is counted by outcome and timed.
// With a nil *Metrics, o is returned unchanged.
func (m *Metrics) Instrument(o oracle.Oracle) oracle.Oracle {
	if m == nil {
		return o
	}
	return &instrumented{Oracle: o, m: m}
}

func (i *instrumented) Check(ctx context.Context, url string) oracle.Verdict {
	start := time.Now()
	v := i.Oracle.Check(ctx, url)

	name := i.Oracle.Name()
	i.m.OracleLatency.WithLabelValues(name).Observe(time.Since(start).Seconds())
	i.m.OracleChecks.WithLabelValues(name, v.Outcome.String()).Inc()
	return v
}
