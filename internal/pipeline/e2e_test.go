package pipeline_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/oracle"
	"github.com/nhle/linkscan/internal/pipeline"
	storeutil "github.com/nhle/linkscan/tests/testutil"
)

func TestIngestThenVerify_WithHTTPOracles(t *testing.T) {
	ipqsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true, "suspicious": false, "phishing": false,
			"malware": false, "risk_score": 0,
		})
	}))
	defer ipqsSrv.Close()

	var gsbRequests []string
	gsbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ThreatInfo struct {
				ThreatEntries []struct {
					URL string `json:"url"`
				} `json:"threatEntries"`
			} `json:"threatInfo"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		target := body.ThreatInfo.ThreatEntries[0].URL
		gsbRequests = append(gsbRequests, target)

		if target == "www.test.org/x?y=1" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"matches": []map[string]string{{"threatType": "MALWARE"}},
			})
			return
		}
		_, _ = w.Write([]byte("{}"))
	}))
	defer gsbSrv.Close()

	s := storeutil.NewTestStore(t)
	src := &fakeSource{messages: []model.RawMessage{
		plainMessage("m1", "links", "Check http://example.com/path and visit www.test.org/x?y=1 now"),
	}}
	ctx := context.Background()

	_, err := pipeline.NewIngester(src, s, nil, nil, nil).Run(ctx, "INBOX", 10)
	require.NoError(t, err)

	client := oracle.NewClient(2*time.Second, 0)
	panel := oracle.Panel{
		oracle.NewIPQS(client, ipqsSrv.URL, "key", 0, nil),
		oracle.NewSafeBrowsing(client, gsbSrv.URL, "key", "", "", nil),
	}

	result, err := pipeline.NewVerifier(s, panel, nil, nil, nil).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Safe)
	assert.Equal(t, 1, result.Unsafe)
	assert.Equal(t, []string{"http://example.com/path", "www.test.org/x?y=1"}, gsbRequests)

	safe, err := s.GetVerdict(ctx, "http://example.com/path")
	require.NoError(t, err)
	assert.True(t, safe.IsSafe)

	unsafe, err := s.GetVerdict(ctx, "www.test.org/x?y=1")
	require.NoError(t, err)
	assert.False(t, unsafe.IsSafe)
	assert.True(t, unsafe.IPQSSafe)
	assert.False(t, unsafe.GSBSafe)
}
