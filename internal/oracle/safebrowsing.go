package oracle

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nhle/linkscan/internal/logging"
	"github.com/nhle/linkscan/internal/model"
)

// DefaultSafeBrowsingBaseURL is the Safe Browsing v4 threat match endpoint.
const DefaultSafeBrowsingBaseURL = "https://safebrowsing.googleapis.com/v4/threatMatches:find"

// Threat filters sent with every lookup.
var (
	sbThreatTypes      = []string{"MALWARE", "SOCIAL_ENGINEERING", "UNWANTED_SOFTWARE"}
	sbPlatformTypes    = []string{"ANY_PLATFORM"}
	sbThreatEntryTypes = []string{"URL"}
)

type sbClientInfo struct {
	ClientID      string `json:"clientId"`
	ClientVersion string `json:"clientVersion"`
}

type sbThreatEntry struct {
	URL string `json:"url"`
}

type sbThreatInfo struct {
	ThreatTypes      []string        `json:"threatTypes"`
	PlatformTypes    []string        `json:"platformTypes"`
	ThreatEntryTypes []string        `json:"threatEntryTypes"`
	ThreatEntries    []sbThreatEntry `json:"threatEntries"`
}

type sbRequest struct {
	Client     sbClientInfo `json:"client"`
	ThreatInfo sbThreatInfo `json:"threatInfo"`
}

type sbMatch struct {
	ThreatType      string        `json:"threatType"`
	PlatformType    string        `json:"platformType"`
	ThreatEntryType string        `json:"threatEntryType"`
	Threat          sbThreatEntry `json:"threat"`
}

type sbResponse struct {
	Matches []sbMatch `json:"matches"`
}

// SafeBrowsing checks URLs against the Google Safe Browsing threat
// lists.
type SafeBrowsing struct {
	client        *Client
	baseURL       string
	apiKey        string
	clientID      string
	clientVersion string
	log           logrus.FieldLogger
}

// NewSafeBrowsing creates the threat-match oracle. Empty values select
// the public endpoint and the default client identity.
func NewSafeBrowsing(
	client *Client,
	baseURL string,
	apiKey string,
	clientID string,
	clientVersion string,
	log logrus.FieldLogger,
) *SafeBrowsing {
	if log == nil {
		log = logging.Discard()
	}
	if baseURL == "" {
		baseURL = DefaultSafeBrowsingBaseURL
	}
	if clientID == "" {
		clientID = "aiagent"
	}
	if clientVersion == "" {
		clientVersion = "1.0"
	}
	return &SafeBrowsing{
		client:        client,
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		clientID:      clientID,
		clientVersion: clientVersion,
		log:           log.WithField("oracle", model.OracleSafeBrowsing),
	}
}

// Name returns the oracle identifier.
func (o *SafeBrowsing) Name() string {
	return model.OracleSafeBrowsing
}

// Check looks target up. The URL is safe when the response has no
// matches.
func (o *SafeBrowsing) Check(ctx context.Context, target string) Verdict {
	endpoint := o.baseURL + "?key=" + url.QueryEscape(o.apiKey)

	payload := sbRequest{
		Client: sbClientInfo{
			ClientID:      o.clientID,
			ClientVersion: o.clientVersion,
		},
		ThreatInfo: sbThreatInfo{
			ThreatTypes:      sbThreatTypes,
			PlatformTypes:    sbPlatformTypes,
			ThreatEntryTypes: sbThreatEntryTypes,
			ThreatEntries:    []sbThreatEntry{{URL: target}},
		},
	}

	var resp sbResponse
	if err := o.client.Post(ctx, o.Name(), endpoint, payload, &resp); err != nil {
		o.log.WithError(err).WithField("url", target).Warn("check failed")
		return unknown(o.Name(), err)
	}

	if len(resp.Matches) > 0 {
		threats := make([]string, 0, len(resp.Matches))
		for _, m := range resp.Matches {
			threats = append(threats, m.ThreatType)
		}
		o.log.WithFields(logrus.Fields{
			"url":          target,
			"threat_types": threats,
		}).Warn("threat detected")
		return Verdict{Oracle: o.Name(), Outcome: Unsafe, Threats: threats}
	}

	o.log.WithField("url", target).Debug("url is clean")
	return Verdict{Oracle: o.Name(), Outcome: Safe}
}
