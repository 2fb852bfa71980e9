package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"

	"github.com/and161185/newsadmin/internal/model"
)

// Form is a multipart body. It is always sent with the writer's boundary
// Content-Type regardless of the request mode.
type Form struct {
	Fields map[string]string
	Files  map[string]*model.File
}

// NewForm returns a form with the given fields and files. Nil files are skipped.
func NewForm(fields map[string]string, files map[string]*model.File) *Form {
	f := &Form{Fields: map[string]string{}, Files: map[string]*model.File{}}
	for k, v := range fields {
		f.Fields[k] = v
	}
	for k, v := range files {
		if v != nil {
			f.Files[k] = v
		}
	}
	return f
}

// Set adds a plain field.
func (f *Form) Set(name, value string) { f.Fields[name] = value }

// encode writes the form and returns the body with its Content-Type.
func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, k := range sortedKeys(f.Fields) {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", err
		}
	}
	for _, k := range sortedKeys(f.Files) {
		file := f.Files[k]
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, k, file.Name))
		ct := file.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// flatten turns an arbitrary JSON-encodable value into form fields.
// Strings are sent as is, every other value as its JSON text.
func flatten(v any) (*Form, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("form body must be an object: %w", err)
	}
	f := NewForm(nil, nil)
	for k, r := range m {
		var s string
		if json.Unmarshal(r, &s) == nil {
			f.Fields[k] = s
			continue
		}
		if string(r) == "null" {
			continue
		}
		f.Fields[k] = string(r)
	}
	return f, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
