// Package guard gates navigation into the admin area on token presence.
package guard

import (
	"path"
	"strings"
	"sync"

	"github.com/and161185/newsadmin/internal/tokenstore"
)

// Routes of the admin area.
const (
	AdminPrefix = "/admin"
	LoginPath   = "/admin/login"
	HomePath    = "/admin/dashboard"
)

// Decision is the outcome of one evaluation.
type Decision struct {
	Allow    bool
	Redirect string // target when not allowed
	From     string // the path that was denied
}

// Guard evaluates paths against the token store. It checks presence only;
// expiry is left to the session checks of the coordinator.
type Guard struct {
	tokens tokenstore.Store

	mu   sync.Mutex
	from string
}

// New returns a guard reading tokens from store.
func New(store tokenstore.Store) *Guard { return &Guard{tokens: store} }

// Evaluate decides whether p may be entered. A denied path is recorded for ReturnTo.
func (g *Guard) Evaluate(p string) Decision {
	p, q := clean(p)
	if !protected(p) {
		return Decision{Allow: true}
	}
	pair, err := g.tokens.Load()
	if err == nil && (pair.AccessToken != "" || pair.RefreshToken != "") {
		return Decision{Allow: true}
	}

	from := p + q
	g.mu.Lock()
	g.from = from
	g.mu.Unlock()
	return Decision{Redirect: LoginPath, From: from}
}

// ReturnTo yields the path recorded by the last denial, or HomePath, and forgets it.
func (g *Guard) ReturnTo() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	p := g.from
	g.from = ""
	if p == "" {
		return HomePath
	}
	return p
}

func protected(p string) bool {
	if p == LoginPath {
		return false
	}
	return p == AdminPrefix || strings.HasPrefix(p, AdminPrefix+"/")
}

// clean splits off the query string and normalizes the path.
func clean(p string) (string, string) {
	q := ""
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p, q = p[:i], p[i:]
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p), q
}
