// Package service is the effect layer of the console: it turns user intents
// into backend calls and dispatches their results into the state store.
package service

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/limiter"
	"github.com/and161185/newsadmin/internal/metrics"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/repository"
	"github.com/and161185/newsadmin/internal/state"
	"github.com/and161185/newsadmin/internal/tokenstore"
)

// DefaultUnauthorizedThreshold is the number of consecutive 401 answers
// that terminates the session.
const DefaultUnauthorizedThreshold = 2

// Dispatcher is the store as seen by the effects.
type Dispatcher interface {
	Dispatch(a state.Action) error
	Snapshot() state.State
}

// Deps are the collaborators of the coordinator. Store, Tokens and the
// repositories are required.
type Deps struct {
	Store      Dispatcher
	Tokens     tokenstore.Store
	Auth       repository.AuthRepository
	Authors    repository.AuthorRepository
	Categories repository.CategoryRepository
	Dashboard  repository.DashboardRepository

	Limiter   limiter.Limiter  // nil disables the login lockout
	Confirmer Confirmer        // nil declines every prompt
	Notifier  Notifier         // nil drops notices
	Logger    *zap.Logger      // nil logs nothing
	Metrics   *metrics.Gateway // nil records nothing

	UnauthorizedThreshold int // <= 0 uses DefaultUnauthorizedThreshold
	Now                   func() time.Time
}

// Coordinator bundles the effect services over one store.
type Coordinator struct {
	Auth       *AuthService
	Authors    *EntityService[model.Author, model.AuthorInput]
	Categories *EntityService[model.Category, model.CategoryInput]
	Dashboard  *DashboardService

	core *core
}

// New wires the services. Call Close to stop in-flight effects.
func New(d Deps) *Coordinator {
	c := newCore(d)
	return &Coordinator{
		Auth: newAuthService(c, d.Auth, d.Limiter),
		Authors: newEntityService(c, d.Authors,
			func(s state.State) state.Collection[model.Author] { return s.Authors }, "author", "authors"),
		Categories: newEntityService(c, d.Categories,
			func(s state.State) state.Collection[model.Category] { return s.Categories }, "category", "categories"),
		Dashboard: newDashboardService(c, d.Dashboard),
		core:      c,
	}
}

// Close cancels every effect in flight and waits for them to return.
// Later calls fail with errs.ErrClosed.
func (c *Coordinator) Close() { c.core.close() }

// core is the state shared by all services.
type core struct {
	store   Dispatcher
	tokens  tokenstore.Store
	confirm Confirmer
	notify  Notifier
	log     *zap.Logger
	metrics *metrics.Gateway
	now     func() time.Time

	threshold int
	authMu    sync.Mutex
	unauth    int

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newCore(d Deps) *core {
	c := &core{
		store:     d.Store,
		tokens:    d.Tokens,
		confirm:   d.Confirmer,
		notify:    d.Notifier,
		log:       d.Logger,
		metrics:   d.Metrics,
		now:       d.Now,
		threshold: d.UnauthorizedThreshold,
	}
	if c.confirm == nil {
		c.confirm = declineAll{}
	}
	if c.notify == nil {
		c.notify = discard{}
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.threshold <= 0 {
		c.threshold = DefaultUnauthorizedThreshold
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

func (c *core) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.mu.Unlock()
	c.wg.Wait()
}

// run executes one effect. The context passed to fn also ends on close.
// A panic inside fn is logged, reported through onPanic and returned as errs.ErrInternal.
func (c *core) run(ctx context.Context, name string, onPanic func(), fn func(ctx context.Context) error) (err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errs.ErrClosed
	}
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	defer func() {
		stop()
		cancel()
	}()

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("panic",
				zap.Any("reason", r),
				zap.ByteString("stack", debug.Stack()),
				zap.String("effect", name),
			)
			if onPanic != nil {
				onPanic()
			}
			c.notify.Notify(Notice{Level: LevelError, Title: "Error", Text: errs.ErrInternal.Error()})
			err = errs.ErrInternal
		}
	}()
	return fn(ctx)
}

func (c *core) dispatch(a state.Action) {
	if err := c.store.Dispatch(a); err != nil {
		c.log.Warn("dispatch dropped", zap.String("action", state.Name(a)), zap.Error(err))
	}
}

// observe tracks consecutive 401 answers. It reports true when err ended
// the session, in which case the caller must not show its own error notice.
func (c *core) observe(err error) bool {
	c.authMu.Lock()
	switch {
	case err == nil:
		c.unauth = 0
		c.authMu.Unlock()
		return false
	case !errors.Is(err, errs.ErrUnauthorized):
		c.authMu.Unlock()
		return false
	}
	c.unauth++
	if c.unauth < c.threshold {
		c.authMu.Unlock()
		return false
	}
	c.unauth = 0
	c.authMu.Unlock()

	c.forceLogout("repeated authorization failure")
	return true
}

// forceLogout ends the local session without a server call.
func (c *core) forceLogout(reason string) {
	if err := c.tokens.Clear(); err != nil {
		c.log.Error("clear tokens", zap.Error(err))
	}
	c.dispatch(state.Logout{})
	c.metrics.ForcedLogout()
	c.log.Info("session terminated", zap.String("reason", reason))
	c.notify.Notify(Notice{
		Level: LevelWarning,
		Title: "Session Expired",
		Text:  "Your session has expired. Please log in again.",
	})
}

func (c *core) resetUnauthorized() {
	c.authMu.Lock()
	c.unauth = 0
	c.authMu.Unlock()
}

// message returns the user-facing text of a failed call.
func message(err error, fallback string) string {
	var apiErr *errs.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
