package gmail

import "github.com/nhle/linkscan/internal/model"

// listResponse is the body of users.messages.list.
type listResponse struct {
	Messages           []messageRef `json:"messages"`
	NextPageToken      string       `json:"nextPageToken"`
	ResultSizeEstimate int          `json:"resultSizeEstimate"`
}

type messageRef struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// message is the body of users.messages.get with format=full.
type message struct {
	ID       string      `json:"id"`
	ThreadID string      `json:"threadId"`
	LabelIDs []string    `json:"labelIds"`
	Snippet  string      `json:"snippet"`
	Payload  messagePart `json:"payload"`
}

type messagePart struct {
	PartID   string        `json:"partId"`
	MimeType string        `json:"mimeType"`
	Filename string        `json:"filename"`
	Headers  []header      `json:"headers"`
	Body     partBody      `json:"body"`
	Parts    []messagePart `json:"parts"`
}

type header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type partBody struct {
	AttachmentID string `json:"attachmentId"`
	Size         int    `json:"size"`
	Data         string `json:"data"`
}

// attachmentResponse is the body of users.messages.attachments.get.
type attachmentResponse struct {
	Size int    `json:"size"`
	Data string `json:"data"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// toModel converts a wire part into the source-neutral part tree.
func (p messagePart) toModel() model.Part {
	part := model.Part{
		PartID:   p.PartID,
		MIMEType: p.MimeType,
		Filename: p.Filename,
		Body: model.PartBody{
			AttachmentID: p.Body.AttachmentID,
			Size:         p.Body.Size,
			Data:         p.Body.Data,
		},
	}

	if len(p.Headers) > 0 {
		part.Headers = make([]model.Header, len(p.Headers))
		for i, h := range p.Headers {
			part.Headers[i] = model.Header{Name: h.Name, Value: h.Value}
		}
	}

	if len(p.Parts) > 0 {
		part.Parts = make([]model.Part, len(p.Parts))
		for i, child := range p.Parts {
			part.Parts[i] = child.toModel()
		}
	}

	return part
}
