package pipeline_test

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/oracle"
	"github.com/nhle/linkscan/internal/source"
)

func b64(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

// fakeSource serves canned messages. Errors can be injected per call.
type fakeSource struct {
	messages    []model.RawMessage
	attachments map[string][]byte

	listErr error
	getErr  map[string]error
	attErr  map[string]error

	getCalls int
	onGet    func(id string)
}

func (f *fakeSource) Type() source.SourceType { return source.SourceTypeGmail }

func (f *fakeSource) List(_ context.Context, _ string, limit int) ([]model.MessageRef, error) {
	if f.listErr != nil {
		return nil, &source.TransportError{SourceType: source.SourceTypeGmail, Op: "list", Err: f.listErr}
	}
	var refs []model.MessageRef
	for _, m := range f.messages {
		if limit > 0 && len(refs) == limit {
			break
		}
		refs = append(refs, model.MessageRef{ID: m.ID, ThreadID: m.ThreadID})
	}
	return refs, nil
}

func (f *fakeSource) Get(_ context.Context, ref model.MessageRef) (*model.RawMessage, error) {
	f.getCalls++
	if f.onGet != nil {
		f.onGet(ref.ID)
	}
	if err := f.getErr[ref.ID]; err != nil {
		return nil, err
	}
	for i := range f.messages {
		if f.messages[i].ID == ref.ID {
			m := f.messages[i]
			return &m, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeSource) GetAttachment(_ context.Context, _, attachmentID string) ([]byte, error) {
	if err := f.attErr[attachmentID]; err != nil {
		return nil, err
	}
	data, ok := f.attachments[attachmentID]
	if !ok {
		return nil, errors.New("no such attachment")
	}
	return data, nil
}

func plainMessage(id, subject, body string) model.RawMessage {
	return model.RawMessage{
		ID:       id,
		ThreadID: "t-" + id,
		Payload: model.Part{
			MIMEType: "text/plain",
			Headers: []model.Header{
				{Name: "Subject", Value: subject},
				{Name: "From", Value: "alice@example.com"},
				{Name: "Date", Value: "Mon, 1 Jan 2024 10:00:00 +0000"},
			},
			Body: model.PartBody{Data: b64(body)},
		},
	}
}

// countingOracle answers a fixed outcome per URL and counts calls.
type countingOracle struct {
	name     string
	outcomes map[string]oracle.Outcome

	mu    sync.Mutex
	calls map[string]int
}

func newCountingOracle(name string, outcomes map[string]oracle.Outcome) *countingOracle {
	return &countingOracle{name: name, outcomes: outcomes, calls: map[string]int{}}
}

func (o *countingOracle) Name() string { return o.name }

func (o *countingOracle) Check(_ context.Context, url string) oracle.Verdict {
	o.mu.Lock()
	o.calls[url]++
	o.mu.Unlock()

	outcome, ok := o.outcomes[url]
	if !ok {
		outcome = oracle.Safe
	}
	v := oracle.Verdict{Oracle: o.name, Outcome: outcome}
	if outcome == oracle.Unknown {
		v.Err = errors.New("timeout")
	}
	return v
}

func (o *countingOracle) Calls(url string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[url]
}

// recordingProgress keeps every event it receives.
type recordingProgress struct {
	stored  []string
	skipped []string
	checked []oracle.Consensus
}

func (r *recordingProgress) MessageStored(msg model.Message, _ []string, _ bool) {
	r.stored = append(r.stored, msg.ID)
}
func (r *recordingProgress) VerifyStarted(model.Message, int) {}
func (r *recordingProgress) URLSkipped(url string)           { r.skipped = append(r.skipped, url) }
func (r *recordingProgress) URLChecked(c oracle.Consensus)   { r.checked = append(r.checked, c) }
