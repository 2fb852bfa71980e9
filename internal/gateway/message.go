package gateway

import (
	"encoding/json"
	"regexp"
	"strings"
)

const defaultMessage = "An error occurred"

// errorPage matches the message line of HTML error pages rendered by the backend.
var errorPage = regexp.MustCompile(`Error: (.*?)(?:<|$)`)

type body struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   any             `json:"error"`
}

// errorText returns the "error" field when it is a string.
func (b body) errorText() string {
	s, _ := b.Error.(string)
	return s
}

// messageFrom picks the human-readable failure message of a response body:
// JSON message, then JSON error, then the plain text of the body.
func messageFrom(raw []byte) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return ""
	}
	var b body
	if trimmed[0] == '{' && json.Unmarshal(raw, &b) == nil {
		if b.Message != "" {
			return b.Message
		}
		return orDefault(b.errorText())
	}
	var s string
	if trimmed[0] == '"' && json.Unmarshal(raw, &s) == nil {
		trimmed = strings.TrimSpace(s)
	}
	if m := errorPage.FindStringSubmatch(trimmed); m != nil {
		if msg := strings.TrimSpace(m[1]); msg != "" {
			return msg
		}
	}
	return trimmed
}
