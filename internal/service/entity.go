package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/repository"
	"github.com/and161185/newsadmin/internal/state"
)

// Entity is a record whose active flag can be patched locally.
type Entity[T any] interface {
	state.Record
	WithActive(active bool) T
}

// Input is a form validated before any intent is dispatched.
type Input interface {
	Validate(create bool) error
}

// EntityService runs the CRUD effects of one collection slice.
type EntityService[T Entity[T], In Input] struct {
	*core
	repo   repository.Entities[T, In]
	noun   string // "author"
	plural string // "authors"

	pick func(state.State) state.Collection[T]

	list  latest
	one   latest
	locks *leading
}

func newEntityService[T Entity[T], In Input](c *core, repo repository.Entities[T, In],
	pick func(state.State) state.Collection[T], noun, plural string) *EntityService[T, In] {
	return &EntityService[T, In]{core: c, repo: repo, pick: pick, noun: noun, plural: plural, locks: newLeading()}
}

// GetAll loads one page. A newer call supersedes this one: its result is
// dropped and errs.ErrSuperseded returned.
func (s *EntityService[T, In]) GetAll(ctx context.Context, p model.ListParams) error {
	return s.run(ctx, s.plural+".getAll", s.panicked(state.OpGetAll), func(ctx context.Context) error {
		ctx, gen := s.list.begin(ctx)
		defer s.list.end(gen)
		if !s.list.start(gen, func() { s.dispatch(state.Request[T]{Op: state.OpGetAll}) }) {
			return errs.ErrSuperseded
		}

		page, err := s.repo.List(ctx, p)
		var forced bool
		ok := s.list.commit(gen, func() {
			forced = s.observe(err)
			if err != nil {
				s.dispatch(state.Failure[T]{Op: state.OpGetAll, Message: message(err, "Failed to fetch "+s.plural)})
				return
			}
			s.dispatch(state.SetAll[T]{Items: page.Items, Pagination: page.Pagination})
		})
		if !ok {
			return errs.ErrSuperseded
		}
		if err != nil && !forced {
			s.notifyError(err, "Failed to fetch "+s.plural)
		}
		return err
	})
}

// GetByID loads one record into the selection with "latest wins" semantics.
func (s *EntityService[T, In]) GetByID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return idRequired()
	}
	return s.run(ctx, s.plural+".getById", s.panicked(state.OpGetByID), func(ctx context.Context) error {
		ctx, gen := s.one.begin(ctx)
		defer s.one.end(gen)
		if !s.one.start(gen, func() { s.dispatch(state.Request[T]{Op: state.OpGetByID}) }) {
			return errs.ErrSuperseded
		}

		rec, err := s.repo.Get(ctx, id)
		var forced bool
		ok := s.one.commit(gen, func() {
			forced = s.observe(err)
			if err != nil {
				s.dispatch(state.Failure[T]{Op: state.OpGetByID, Message: message(err, "Failed to fetch "+s.noun)})
				return
			}
			s.dispatch(state.SetOne[T]{Record: rec})
		})
		if !ok {
			return errs.ErrSuperseded
		}
		if err != nil && !forced {
			s.notifyError(err, "Failed to fetch "+s.noun)
		}
		return err
	})
}

// Create validates in locally and submits it. Invalid input returns
// *errs.ValidationError without touching the state.
func (s *EntityService[T, In]) Create(ctx context.Context, in In) error {
	if err := in.Validate(true); err != nil {
		return err
	}
	return s.mutate(ctx, state.OpCreate, nil, func(ctx context.Context) (state.Action, Notice, error) {
		rec, err := s.repo.Create(ctx, in)
		return state.CreateSuccess[T]{Record: rec},
			Notice{Level: LevelSuccess, Title: title(s.noun) + " Created", Text: "The " + s.noun + " has been successfully created."},
			err
	})
}

// Update validates the changed fields and submits them.
func (s *EntityService[T, In]) Update(ctx context.Context, id string, in In) error {
	if strings.TrimSpace(id) == "" {
		return idRequired()
	}
	if err := in.Validate(false); err != nil {
		return err
	}
	return s.mutate(ctx, state.OpUpdate, nil, func(ctx context.Context) (state.Action, Notice, error) {
		rec, err := s.repo.Update(ctx, id, in)
		if err == nil && rec.RecordID() == "" {
			// No echo: read the record back so the selection carries the patch.
			if cur, gerr := s.repo.Get(ctx, id); gerr == nil {
				rec = cur
			} else {
				s.log.Warn("read back updated record", zap.String("id", id), zap.Error(gerr))
			}
		}
		return state.UpdateSuccess[T]{Op: state.OpUpdate, Record: rec},
			Notice{Level: LevelSuccess, Title: title(s.noun) + " Updated", Text: "The " + s.noun + " has been successfully updated."},
			err
	})
}

// UpdateStatus activates or deactivates a record after confirmation.
// When the backend echoes no record the listed one is patched locally.
func (s *EntityService[T, In]) UpdateStatus(ctx context.Context, id string, active bool) error {
	if strings.TrimSpace(id) == "" {
		return idRequired()
	}
	verb := "deactivate"
	if active {
		verb = "activate"
	}
	prompt := &Prompt{
		Title:   "Are you sure you want to " + verb + " this " + s.noun + "?",
		Text:    "The " + s.noun + " will be " + verb + "d.",
		Confirm: title(verb),
	}
	return s.mutate(ctx, state.OpUpdateStatus, prompt, func(ctx context.Context) (state.Action, Notice, error) {
		rec, err := s.repo.SetStatus(ctx, id, active)
		if err == nil && rec.RecordID() == "" {
			if cur, ok := s.find(id); ok {
				rec = cur.WithActive(active)
			}
		}
		return state.UpdateSuccess[T]{Op: state.OpUpdateStatus, Record: rec},
			Notice{Level: LevelSuccess, Title: title(s.noun) + " Updated", Text: title(s.noun) + " has been " + verb + "d successfully"},
			err
	})
}

// Delete removes one record after confirmation.
func (s *EntityService[T, In]) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return idRequired()
	}
	prompt := &Prompt{
		Title:   "Are you sure you want to delete this " + s.noun + "?",
		Text:    "This action cannot be undone!",
		Confirm: "Delete",
	}
	return s.mutate(ctx, state.OpDelete, prompt, func(ctx context.Context) (state.Action, Notice, error) {
		err := s.repo.Delete(ctx, id)
		return state.DeleteSuccess[T]{IDs: []string{id}},
			Notice{Level: LevelSuccess, Title: "Deleted!", Text: "The " + s.noun + " has been deleted successfully."},
			err
	})
}

// DeleteMany removes a set of records in one call after confirmation. The
// backend answer is all-or-nothing: on failure no id is removed locally.
func (s *EntityService[T, In]) DeleteMany(ctx context.Context, ids []string) error {
	ids = compact(ids)
	if len(ids) == 0 {
		v := &errs.ValidationError{}
		v.Add("ids", "Select at least one "+s.noun)
		return v
	}
	prompt := &Prompt{
		Title:   "Are you sure you want to delete?",
		Text:    "This action cannot be undone!",
		Confirm: "Delete",
	}
	return s.mutate(ctx, state.OpDeleteMany, prompt, func(ctx context.Context) (state.Action, Notice, error) {
		err := s.repo.DeleteMany(ctx, ids)
		return state.DeleteSuccess[T]{IDs: ids},
			Notice{Level: LevelSuccess, Title: "Deleted!", Text: "The " + s.plural + " have been deleted successfully."},
			err
	})
}

// mutate runs a write with the leading policy: a duplicate of an operation
// in flight returns errs.ErrBusy. With a prompt, a decline returns
// errs.ErrDeclined before anything is dispatched.
func (s *EntityService[T, In]) mutate(ctx context.Context, op state.Op, prompt *Prompt,
	call func(ctx context.Context) (state.Action, Notice, error)) error {
	release, ok := s.locks.try(string(op))
	if !ok {
		return errs.ErrBusy
	}
	defer release()

	return s.run(ctx, s.plural+"."+string(op), s.panicked(op), func(ctx context.Context) error {
		if prompt != nil && !s.confirm.Confirm(ctx, *prompt) {
			return errs.ErrDeclined
		}
		s.dispatch(state.Request[T]{Op: op})

		success, notice, err := call(ctx)
		if s.observe(err) {
			s.dispatch(state.Failure[T]{Op: op, Message: message(err, "")})
			return err
		}
		if err != nil {
			fallback := "Failed to " + opVerb(op) + " " + s.noun
			s.dispatch(state.Failure[T]{Op: op, Message: message(err, fallback)})
			s.notifyError(err, fallback)
			return err
		}
		s.dispatch(success)
		s.notify.Notify(notice)
		return nil
	})
}

func (s *EntityService[T, In]) panicked(op state.Op) func() {
	return func() {
		s.dispatch(state.Failure[T]{Op: op, Message: errs.ErrInternal.Error()})
	}
}

func (s *EntityService[T, In]) find(id string) (T, bool) {
	return s.pick(s.store.Snapshot()).Find(id)
}

func (c *core) notifyError(err error, fallback string) {
	c.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: message(err, fallback)})
}

func idRequired() error {
	v := &errs.ValidationError{}
	v.Add("id", "ID is required")
	return v
}

func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func opVerb(op state.Op) string {
	switch op {
	case state.OpCreate:
		return "create"
	case state.OpUpdate, state.OpUpdateStatus:
		return "update"
	case state.OpDelete, state.OpDeleteMany:
		return "delete"
	}
	return "load"
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// IsQuiet reports whether err is a coordinator outcome that needs no error output.
func IsQuiet(err error) bool {
	return errors.Is(err, errs.ErrDeclined) || errors.Is(err, errs.ErrSuperseded)
}
