package pipeline

import (
	"github.com/nhle/linkscan/internal/model"
	"github.com/nhle/linkscan/internal/oracle"
)

// Progress receives human-readable progress events from the pipelines.
type Progress interface {
	// MessageStored is called after a message and its children are
	// committed. inserted is false when the message row already existed.
	MessageStored(msg model.Message, urls []string, inserted bool)

	// VerifyStarted is called once the message to verify is selected.
	VerifyStarted(msg model.Message, links int)

	// URLSkipped is called for a URL that already has a verdict.
	URLSkipped(url string)

	// URLChecked is called after a verdict has been stored.
	URLChecked(c oracle.Consensus)
}

// NopProgress discards all progress events.
type NopProgress struct{}

func (NopProgress) MessageStored(model.Message, []string, bool) {}
func (NopProgress) VerifyStarted(model.Message, int)            {}
func (NopProgress) URLSkipped(string)                           {}
func (NopProgress) URLChecked(oracle.Consensus)                 {}
