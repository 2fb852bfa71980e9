// Package session periodically terminates sessions whose access token expired.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is the check period used when none is configured.
const DefaultInterval = 30 * time.Second

// Enforcer ends the session when the stored token has expired and reports whether it did.
type Enforcer interface {
	EnforceExpiry(ctx context.Context) bool
}

// Watcher runs the expiry check on a cron schedule.
type Watcher struct {
	cron     *cron.Cron
	enforcer Enforcer
	interval time.Duration
	log      *zap.Logger
	onExpire func()

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewWatcher returns a stopped watcher. interval <= 0 uses DefaultInterval;
// cron does not schedule below one second.
func NewWatcher(e Enforcer, interval time.Duration, log *zap.Logger) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		enforcer: e,
		interval: interval,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnExpire registers fn to run after a check terminated the session.
func (w *Watcher) OnExpire(fn func()) { w.onExpire = fn }

// Start schedules the check.
func (w *Watcher) Start() error {
	if _, err := w.cron.AddFunc(fmt.Sprintf("@every %s", w.interval), w.Check); err != nil {
		return err
	}
	w.cron.Start()
	return nil
}

// Check runs one expiry check.
func (w *Watcher) Check() {
	if w.enforcer.EnforceExpiry(w.ctx) {
		w.log.Info("session expired")
		if w.onExpire != nil {
			w.onExpire()
		}
	}
}

// Stop unschedules the check and waits for a running one to return.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		w.cancel()
		<-w.cron.Stop().Done()
	})
}
