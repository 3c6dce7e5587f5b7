package email

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/linkscan/internal/extract"
	"github.com/nhle/linkscan/internal/model"
)

// errFound stops an entity walk once the wanted part has been read.
var errFound = errors.New("part found")

// parseMessage parses a raw RFC 5322 message into a content-part tree.
// Leaf parts carry their decoded, UTF-8 converted payload as URL-safe
// base64 data. Parts with a filename carry their part path as the
// attachment ID instead of data.
func parseMessage(raw []byte) (model.Part, string, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !isRecoverable(err) {
		return model.Part{}, "", fmt.Errorf("parsing message: %w", err)
	}

	threadID := threadIDOf(entity.Header)
	return entityToPart(entity, "", 0), threadID, nil
}

// entityToPart converts one entity. Part IDs are dot-separated,
// zero-based child indices; the root has the empty ID.
func entityToPart(e *message.Entity, partID string, depth int) model.Part {
	mediaType, _, _ := e.Header.ContentType()
	if mediaType == "" {
		mediaType = "text/plain"
	}

	part := model.Part{
		PartID:   partID,
		MIMEType: mediaType,
		Headers:  headersOf(e.Header),
	}

	if mr := e.MultipartReader(); mr != nil {
		if depth >= extract.MaxPartDepth {
			return part
		}
		for i := 0; ; i++ {
			child, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil && !isRecoverable(err) {
				break
			}
			part.Parts = append(part.Parts, entityToPart(child, childPartID(partID, i), depth+1))
		}
		return part
	}

	body, err := io.ReadAll(e.Body)
	if err != nil {
		return part
	}
	part.Body.Size = len(body)

	ah := mail.AttachmentHeader{Header: e.Header}
	if filename, _ := ah.Filename(); filename != "" {
		part.Filename = filename
		part.Body.AttachmentID = attachmentID(partID)
		return part
	}

	if len(body) > 0 {
		part.Body.Data = base64.URLEncoding.EncodeToString(body)
	}
	return part
}

// readAttachment walks raw and returns the decoded payload of the part
// whose attachment ID is id.
func readAttachment(raw []byte, id string) ([]byte, error) {
	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !isRecoverable(err) {
		return nil, fmt.Errorf("parsing message: %w", err)
	}

	var data []byte
	err = entity.Walk(func(path []int, e *message.Entity, _ error) error {
		if attachmentID(pathID(path)) != id {
			return nil
		}
		if e.MultipartReader() != nil {
			return fmt.Errorf("part %s is multipart", id)
		}
		b, err := io.ReadAll(e.Body)
		if err != nil {
			return fmt.Errorf("reading part %s: %w", id, err)
		}
		data = b
		return errFound
	})
	if errors.Is(err, errFound) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("attachment %s not found", id)
}

func headersOf(h message.Header) []model.Header {
	var headers []model.Header
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		headers = append(headers, model.Header{Name: fields.Key(), Value: value})
	}
	return headers
}

// threadIDOf derives a conversation ID from the first References entry,
// falling back to In-Reply-To and then the message's own Message-ID.
func threadIDOf(h message.Header) string {
	mh := mail.Header{Header: h}
	for _, key := range []string{"References", "In-Reply-To"} {
		if ids, err := mh.MsgIDList(key); err == nil && len(ids) > 0 {
			return ids[0]
		}
	}
	id, _ := mh.MessageID()
	return id
}

func childPartID(parent string, i int) string {
	if parent == "" {
		return strconv.Itoa(i)
	}
	return parent + "." + strconv.Itoa(i)
}

func pathID(path []int) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ".")
}

// attachmentID maps a part ID to an attachment ID. A single-part message
// has the empty part ID, which is not usable as an attachment ID.
func attachmentID(partID string) string {
	if partID == "" {
		return "root"
	}
	return partID
}

func isRecoverable(err error) bool {
	return message.IsUnknownCharset(err) || message.IsUnknownEncoding(err)
}
