package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/newsadmin/internal/limiter"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/repository"
	"github.com/and161185/newsadmin/internal/state"
	"github.com/and161185/newsadmin/internal/tokenstore"
)

type fakeEntities[T any, In any] struct {
	mu    sync.Mutex
	calls map[string]int

	list    func(ctx context.Context, p model.ListParams) (repository.Page[T], error)
	get     func(ctx context.Context, id string) (T, error)
	create  func(ctx context.Context, in In) (T, error)
	update  func(ctx context.Context, id string, in In) (T, error)
	status  func(ctx context.Context, id string, active bool) (T, error)
	del     func(ctx context.Context, id string) error
	delMany func(ctx context.Context, ids []string) error
}

var _ repository.CategoryRepository = (*fakeEntities[model.Category, model.CategoryInput])(nil)

func (f *fakeEntities[T, In]) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeEntities[T, In]) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeEntities[T, In]) List(ctx context.Context, p model.ListParams) (repository.Page[T], error) {
	f.hit("list")
	if f.list == nil {
		return repository.Page[T]{}, nil
	}
	return f.list(ctx, p)
}

func (f *fakeEntities[T, In]) Get(ctx context.Context, id string) (T, error) {
	f.hit("get")
	var zero T
	if f.get == nil {
		return zero, nil
	}
	return f.get(ctx, id)
}

func (f *fakeEntities[T, In]) Create(ctx context.Context, in In) (T, error) {
	f.hit("create")
	var zero T
	if f.create == nil {
		return zero, nil
	}
	return f.create(ctx, in)
}

func (f *fakeEntities[T, In]) Update(ctx context.Context, id string, in In) (T, error) {
	f.hit("update")
	var zero T
	if f.update == nil {
		return zero, nil
	}
	return f.update(ctx, id, in)
}

func (f *fakeEntities[T, In]) SetStatus(ctx context.Context, id string, active bool) (T, error) {
	f.hit("status")
	var zero T
	if f.status == nil {
		return zero, nil
	}
	return f.status(ctx, id, active)
}

func (f *fakeEntities[T, In]) Delete(ctx context.Context, id string) error {
	f.hit("delete")
	if f.del == nil {
		return nil
	}
	return f.del(ctx, id)
}

func (f *fakeEntities[T, In]) DeleteMany(ctx context.Context, ids []string) error {
	f.hit("deleteMany")
	if f.delMany == nil {
		return nil
	}
	return f.delMany(ctx, ids)
}

type fakeAuth struct {
	mu    sync.Mutex
	calls int
	login func(ctx context.Context, c model.Credentials) (model.LoginResult, error)
}

func (f *fakeAuth) Login(ctx context.Context, c model.Credentials) (model.LoginResult, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.login(ctx, c)
}

func (f *fakeAuth) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDashboard struct {
	get func(ctx context.Context) (model.Dashboard, error)
}

func (f *fakeDashboard) Get(ctx context.Context) (model.Dashboard, error) { return f.get(ctx) }

type recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func (r *recorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *recorder) levels(l Level) []Notice {
	var out []Notice
	for _, n := range r.all() {
		if n.Level == l {
			out = append(out, n)
		}
	}
	return out
}

type fakeConfirm struct {
	mu      sync.Mutex
	answer  bool
	prompts []Prompt
}

func (f *fakeConfirm) Confirm(_ context.Context, p Prompt) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, p)
	return f.answer
}

type harness struct {
	store      *state.Store
	tokens     *tokenstore.Memory
	auth       *fakeAuth
	authors    *fakeEntities[model.Author, model.AuthorInput]
	categories *fakeEntities[model.Category, model.CategoryInput]
	dash       *fakeDashboard
	notes      *recorder
	confirm    *fakeConfirm
	lim        *limiter.Memory
	c          *Coordinator

	mu          sync.Mutex
	transitions []state.State
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:      state.New(zaptest.NewLogger(t)),
		tokens:     tokenstore.NewMemory(),
		auth:       &fakeAuth{},
		authors:    &fakeEntities[model.Author, model.AuthorInput]{},
		categories: &fakeEntities[model.Category, model.CategoryInput]{},
		dash:       &fakeDashboard{},
		notes:      &recorder{},
		confirm:    &fakeConfirm{answer: true},
		lim:        limiter.NewMemory(time.Minute, 3, time.Minute),
	}
	h.c = New(Deps{
		Store:      h.store,
		Tokens:     h.tokens,
		Auth:       h.auth,
		Authors:    h.authors,
		Categories: h.categories,
		Dashboard:  h.dash,
		Limiter:    h.lim,
		Confirmer:  h.confirm,
		Notifier:   h.notes,
		Logger:     zaptest.NewLogger(t),
	})
	h.store.Subscribe(func(s state.State) {
		h.mu.Lock()
		h.transitions = append(h.transitions, s)
		h.mu.Unlock()
	})
	t.Cleanup(h.c.Close)
	return h
}

func (h *harness) steps() []state.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]state.State(nil), h.transitions...)
}

func (h *harness) seed(t *testing.T, items ...model.Category) {
	t.Helper()
	require.NoError(t, h.store.Dispatch(state.SetAll[model.Category]{Items: items}))
	h.mu.Lock()
	h.transitions = nil
	h.mu.Unlock()
}

func token(t *testing.T, exp time.Time, email string) string {
	t.Helper()
	claims := jwt.MapClaims{"exp": exp.Unix()}
	if email != "" {
		claims["email"] = email
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

func validCategory() model.CategoryInput {
	active := true
	return model.CategoryInput{
		Title:    "World",
		Order:    "1",
		IsActive: &active,
		Image:    &model.File{Name: "w.png", ContentType: "image/png", Data: []byte("x")},
	}
}

type repositoryPage = repository.Page[model.Category]
