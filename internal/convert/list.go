// Package convert decodes envelope data into records and pagination.
package convert

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/and161185/newsadmin/internal/model"
)

// listKeys are the object keys under which list endpoints return records, in lookup order.
var listKeys = []string{"items", "authors", "categories", "data"}

type wirePagination struct {
	Total       *int `json:"total"`
	Page        *int `json:"page"`
	Pages       *int `json:"pages"`
	TotalCount  *int `json:"totalCount"`
	CurrentPage *int `json:"currentPage"`
	TotalPages  *int `json:"totalPages"`
}

func (w wirePagination) toModel() model.Pagination {
	pick := func(a, b *int) int {
		switch {
		case a != nil:
			return *a
		case b != nil:
			return *b
		}
		return 0
	}
	return model.Pagination{
		TotalCount:  pick(w.Total, w.TotalCount),
		CurrentPage: pick(w.Page, w.CurrentPage),
		TotalPages:  pick(w.Pages, w.TotalPages),
	}
}

// DecodeList decodes list data given either as a bare array or as an object
// holding the records under items, authors, categories or data together with
// an optional pagination block. Pagination is nil when absent.
func DecodeList[T any](data json.RawMessage) ([]T, *model.Pagination, error) {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []T{}, nil, nil
	}

	if raw[0] == '[' {
		items, err := decodeItems[T](raw)
		return items, nil, err
	}
	if raw[0] != '{' {
		return nil, nil, fmt.Errorf("list data: unexpected %q", raw[:1])
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, fmt.Errorf("list data: %w", err)
	}

	items := []T{}
	for _, k := range listKeys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		v = bytes.TrimSpace(v)
		if len(v) == 0 || v[0] != '[' {
			// "data" may itself be a nested list object
			if k == "data" && len(v) > 0 && v[0] == '{' {
				return DecodeList[T](v)
			}
			continue
		}
		var err error
		if items, err = decodeItems[T](v); err != nil {
			return nil, nil, err
		}
		break
	}

	var pg *model.Pagination
	if p, ok := obj["pagination"]; ok && !bytes.Equal(bytes.TrimSpace(p), []byte("null")) {
		var w wirePagination
		if err := json.Unmarshal(p, &w); err != nil {
			return nil, nil, fmt.Errorf("pagination: %w", err)
		}
		m := w.toModel()
		pg = &m
	}
	return items, pg, nil
}

func decodeItems[T any](raw []byte) ([]T, error) {
	items := []T{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// DecodeRecord decodes a single record. It reports false when data is empty
// or carries no id, so callers can fall back to local knowledge.
func DecodeRecord[T interface{ RecordID() string }](data json.RawMessage) (T, bool, error) {
	var rec T
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return rec, false, nil
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return rec, false, fmt.Errorf("record: %w", err)
	}
	return rec, rec.RecordID() != "", nil
}
