package oracle

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nhle/linkscan/internal/logging"
	"github.com/nhle/linkscan/internal/model"
)

// DefaultIPQSBaseURL is the IPQualityScore URL scanner endpoint.
const DefaultIPQSBaseURL = "https://www.ipqualityscore.com/api/json/url"

// ipqsResponse is the subset of the IPQualityScore URL scan response
// used to reach a verdict.
type ipqsResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	Suspicious bool    `json:"suspicious"`
	Phishing   bool    `json:"phishing"`
	Malware    bool    `json:"malware"`
	RiskScore  float64 `json:"risk_score"`
}

// IPQS checks URLs against IPQualityScore's score and threat flags.
type IPQS struct {
	client     *Client
	baseURL    string
	apiKey     string
	strictness int
	log        logrus.FieldLogger
}

// NewIPQS creates the score-based oracle. An empty baseURL selects the
// public endpoint.
func NewIPQS(
	client *Client,
	baseURL string,
	apiKey string,
	strictness int,
	log logrus.FieldLogger,
) *IPQS {
	if log == nil {
		log = logging.Discard()
	}
	if baseURL == "" {
		baseURL = DefaultIPQSBaseURL
	}
	return &IPQS{
		client:     client,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		strictness: strictness,
		log:        log.WithField("oracle", model.OracleIPQS),
	}
}

// Name returns the oracle identifier.
func (o *IPQS) Name() string {
	return model.OracleIPQS
}

// Check asks IPQualityScore about target. The URL is safe only when the
// API reports success and none of the suspicious, phishing or malware
// flags are set.
func (o *IPQS) Check(ctx context.Context, target string) Verdict {
	endpoint := fmt.Sprintf(
		"%s/%s/%s?strictness=%d",
		o.baseURL,
		url.PathEscape(o.apiKey),
		url.QueryEscape(target),
		o.strictness,
	)

	var resp ipqsResponse
	if err := o.client.Get(ctx, o.Name(), endpoint, &resp); err != nil {
		o.log.WithError(err).WithField("url", target).Warn("check failed")
		return unknown(o.Name(), err)
	}

	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "Unknown error"
		}
		err := &ProtocolError{Oracle: o.Name(), Message: msg}
		o.log.WithError(err).WithField("url", target).Warn("API error")
		return unknown(o.Name(), err)
	}

	var threats []string
	if resp.Suspicious {
		threats = append(threats, "suspicious")
	}
	if resp.Phishing {
		threats = append(threats, "phishing")
	}
	if resp.Malware {
		threats = append(threats, "malware")
	}

	if len(threats) > 0 {
		o.log.WithFields(logrus.Fields{
			"url":          target,
			"risk_score":   resp.RiskScore,
			"threat_types": threats,
		}).Warn("threat detected")
		return Verdict{
			Oracle:    o.Name(),
			Outcome:   Unsafe,
			RiskScore: resp.RiskScore,
			Threats:   threats,
		}
	}

	o.log.WithFields(logrus.Fields{
		"url":        target,
		"risk_score": resp.RiskScore,
	}).Debug("url is clean")
	return Verdict{Oracle: o.Name(), Outcome: Safe, RiskScore: resp.RiskScore}
}
