package gateway

import (
	"encoding/json"
	"errors"

	"github.com/and161185/newsadmin/internal/errs"
)

// Envelope is the uniform result of every gateway call.
type Envelope struct {
	Success bool
	Data    json.RawMessage
	Message string
	Status  int // HTTP status, 0 when no response was received
}

// Err converts a failed envelope to *errs.APIError and returns nil on success.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}
	return &errs.APIError{Status: e.Status, Message: e.Message}
}

// Decode unmarshals Data into v. Empty data leaves v untouched.
func (e Envelope) Decode(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Unauthorized reports whether the backend answered 401.
func (e Envelope) Unauthorized() bool {
	return errors.Is(e.Err(), errs.ErrUnauthorized)
}

func failure(status int, msg string) Envelope {
	if msg == "" {
		msg = defaultMessage
	}
	return Envelope{Status: status, Message: msg}
}
