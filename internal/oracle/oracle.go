package oracle

import (
	"context"
	"errors"
	"fmt"
)

// Outcome is the three-valued result of a reputation check.
type Outcome int

const (
	// Unknown means the oracle could not give an answer.
	Unknown Outcome = iota
	Safe
	Unsafe
)

func (o Outcome) String() string {
	switch o {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Verdict is a single oracle's answer for one URL.
type Verdict struct {
	Oracle  string
	Outcome Outcome

	// Err explains an Unknown outcome.
	Err error

	// RiskScore is the oracle's numeric score when it reports one.
	RiskScore float64

	// Threats lists the threat categories that made the URL unsafe.
	Threats []string
}

// Safe reports whether the oracle positively cleared the URL. Unknown
// is never safe.
func (v Verdict) Safe() bool {
	return v.Outcome == Safe
}

// Oracle is an external reputation service that can judge a URL.
// Check never returns an error: failures are reported as an Unknown
// verdict.
type Oracle interface {
	Name() string
	Check(ctx context.Context, url string) Verdict
}

// ProtocolError describes an oracle response that could not be
// interpreted as an answer (bad status, malformed body, success=false).
type ProtocolError struct {
	Oracle     string
	StatusCode int
	Message    string
}

func (e *ProtocolError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s protocol error (%d): %s", e.Oracle, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s protocol error: %s", e.Oracle, e.Message)
}

// IsProtocolError reports whether err (or any error in its chain) is a
// ProtocolError.
func IsProtocolError(err error) bool {
	var protoErr *ProtocolError
	return errors.As(err, &protoErr)
}

// unknown builds an Unknown verdict for the named oracle.
func unknown(name string, err error) Verdict {
	return Verdict{Oracle: name, Outcome: Unknown, Err: err}
}
