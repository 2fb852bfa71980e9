package state

import (
	"github.com/and161185/newsadmin/internal/model"
)

// Collection is the read model of one entity slice.
// Items and Selected are replaced, never mutated, so snapshots stay stable.
type Collection[T Record] struct {
	Items      []T
	Selected   *T
	Loading    bool
	Error      string
	Success    bool
	Pagination *model.Pagination
}

// NewCollection returns an idle, empty slice.
func NewCollection[T Record]() Collection[T] {
	return Collection[T]{Items: []T{}}
}

// Reduce applies a to the slice. The second result is false when the action
// belongs to another slice.
func (c Collection[T]) Reduce(a Action) (Collection[T], bool) {
	switch a := a.(type) {
	case Request[T]:
		c.Loading, c.Success, c.Error = true, false, ""

	case SetAll[T]:
		c.Items = dedupe(a.Items)
		c.Pagination = clonePagination(a.Pagination)
		c.Loading, c.Success, c.Error = false, false, ""

	case SetOne[T]:
		rec := a.Record
		c.Selected = &rec
		c.Loading, c.Success, c.Error = false, false, ""

	case CreateSuccess[T]:
		if a.Record.RecordID() != "" {
			c.Items = upsert(c.Items, a.Record)
		}
		c.Loading, c.Success, c.Error = false, true, ""

	case UpdateSuccess[T]:
		if a.Record.RecordID() != "" {
			c.Items = replace(c.Items, a.Record)
			rec := a.Record
			c.Selected = &rec
		}
		c.Loading, c.Success, c.Error = false, true, ""

	case DeleteSuccess[T]:
		c.Items = without(c.Items, a.IDs)
		c.Loading, c.Success, c.Error = false, true, ""

	case Failure[T]:
		c.Loading, c.Success, c.Error = false, false, a.Message

	default:
		return c, false
	}
	return c, true
}

// Find returns the item with id.
func (c Collection[T]) Find(id string) (T, bool) {
	for _, it := range c.Items {
		if it.RecordID() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

// upsert appends rec, or replaces the entry that already has its id.
func upsert[T Record](items []T, rec T) []T {
	out := make([]T, 0, len(items)+1)
	found := false
	for _, it := range items {
		if it.RecordID() == rec.RecordID() {
			it, found = rec, true
		}
		out = append(out, it)
	}
	if !found {
		out = append(out, rec)
	}
	return out
}

func replace[T Record](items []T, rec T) []T {
	out := make([]T, len(items))
	for i, it := range items {
		if it.RecordID() == rec.RecordID() {
			it = rec
		}
		out[i] = it
	}
	return out
}

func without[T Record](items []T, ids []string) []T {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if _, ok := drop[it.RecordID()]; !ok {
			out = append(out, it)
		}
	}
	return out
}

// dedupe copies items keeping the last record of every id at its first position.
func dedupe[T Record](items []T) []T {
	out := make([]T, 0, len(items))
	pos := make(map[string]int, len(items))
	for _, it := range items {
		id := it.RecordID()
		if i, ok := pos[id]; ok && id != "" {
			out[i] = it
			continue
		}
		pos[id] = len(out)
		out = append(out, it)
	}
	return out
}

func clonePagination(p *model.Pagination) *model.Pagination {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
