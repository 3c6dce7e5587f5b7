package oracle

import "context"

// Consensus is the combined judgement of all configured oracles for a
// URL, with each individual verdict kept for auditing.
type Consensus struct {
	URL      string
	Safe     bool
	Verdicts []Verdict
}

// Aggregate combines per-oracle verdicts with a fail-closed AND: the
// URL is safe only if every oracle answered Safe. Unknown counts as
// unsafe, and no verdicts at all is unsafe.
func Aggregate(url string, verdicts []Verdict) Consensus {
	safe := len(verdicts) > 0
	for _, v := range verdicts {
		if !v.Safe() {
			safe = false
		}
	}
	return Consensus{URL: url, Safe: safe, Verdicts: verdicts}
}

// Result reports the named oracle's boolean result. An oracle that was
// not consulted, or answered Unknown, reads as false.
func (c Consensus) Result(oracle string) bool {
	for _, v := range c.Verdicts {
		if v.Oracle == oracle {
			return v.Safe()
		}
	}
	return false
}

// Unknown returns the names of oracles that could not answer.
func (c Consensus) Unknown() []string {
	var names []string
	for _, v := range c.Verdicts {
		if v.Outcome == Unknown {
			names = append(names, v.Oracle)
		}
	}
	return names
}

// Panel is an ordered list of oracles consulted one after another.
type Panel []Oracle

// Check runs every oracle on url in order and aggregates the results.
func (p Panel) Check(ctx context.Context, url string) Consensus {
	verdicts := make([]Verdict, 0, len(p))
	for _, o := range p {
		verdicts = append(verdicts, o.Check(ctx, url))
	}
	return Aggregate(url, verdicts)
}
