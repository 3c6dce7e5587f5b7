package extract

import (
	"encoding/base64"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/nhle/linkscan/internal/model"
)

// MaxPartDepth bounds how deep Body descends into nested multipart
// containers.
const MaxPartDepth = 50

// Body returns the first plain-text payload found in a content-part
// tree, or "" when there is none.
//
// Inline data on the node itself wins over its children. Otherwise the
// first direct text/plain child with inline data is used, and only then
// are multipart/* children searched in order.
func Body(part model.Part) string {
	return bodyAt(part, 0)
}

func bodyAt(part model.Part, depth int) string {
	if depth > MaxPartDepth {
		return ""
	}

	if part.Body.HasData() {
		return DecodeData(part.Body.Data)
	}

	for _, child := range part.Parts {
		if child.MIMEType == "text/plain" && child.Body.HasData() {
			return DecodeData(child.Body.Data)
		}
	}

	for _, child := range part.Parts {
		if !strings.HasPrefix(child.MIMEType, "multipart/") {
			continue
		}
		if text := bodyAt(child, depth+1); text != "" {
			return text
		}
	}

	return ""
}

// DecodeData decodes URL-safe base64 text into a UTF-8 string. Padding
// is optional. Undecodable input yields "".
func DecodeData(data string) string {
	raw, err := DecodeBytes(data)
	if err != nil {
		return ""
	}
	// The UTF-8 decoder substitutes U+FFFD for ill-formed sequences
	// and never fails.
	text, _ := unicode.UTF8.NewDecoder().Bytes(raw)
	return string(text)
}

// DecodeBytes decodes URL-safe base64 with or without padding.
func DecodeBytes(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}
