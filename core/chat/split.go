package chat

import (
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"
)

// Split is a tutor reply separated from its trailing metadata.
// Meta is nil when the reply carries no usable metadata.
type Split struct {
	Reply string
	Meta  *Metadata
}

// SplitReply separates the natural-language reply from the JSON object the tutor
// appends to it. The object must close the text (optionally inside a Markdown
// code fence). Text without a valid trailing object is returned untouched; a valid
// object that does not decode as Metadata is still removed, with a nil Meta.
func SplitReply(raw string) Split {
	text := strings.TrimRightFunc(raw, isSpace)
	body, fenced := unfence(text)

	start, ok := trailingObject(body)
	if !ok {
		return Split{Reply: strings.TrimSpace(raw)}
	}

	reply := body[:start]
	if fenced {
		reply = strings.TrimRightFunc(reply, isSpace)
		reply = strings.TrimSuffix(reply, "```json")
		reply = strings.TrimSuffix(reply, "```")
	}
	split := Split{Reply: strings.TrimSpace(reply)}

	// the object is dropped from the reply even when it does not fit Metadata
	var meta Metadata
	if err := json.Unmarshal([]byte(body[start:]), &meta); err == nil {
		split.Meta = &meta
	}
	return split
}

// trailingObject returns the offset of the outermost JSON object ending the text.
func trailingObject(text string) (int, bool) {
	if !strings.HasSuffix(text, "}") {
		return 0, false
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		// the first valid candidate from the left is the outermost one
		if gjson.Valid(text[i:]) {
			return i, true
		}
	}
	return 0, false
}

// unfence drops a closing Markdown code fence, if present.
func unfence(text string) (string, bool) {
	if !strings.HasSuffix(text, "```") {
		return text, false
	}
	return strings.TrimRightFunc(strings.TrimSuffix(text, "```"), isSpace), true
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
