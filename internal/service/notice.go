package service

import "context"

// Level grades a user notice.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
	LevelWarning
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	}
	return "unknown"
}

// Notice is a one-shot message shown to the user.
type Notice struct {
	Level Level
	Title string
	Text  string
}

// Notifier displays notices.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Prompt is a yes/no question asked before a destructive call.
type Prompt struct {
	Title   string
	Text    string
	Confirm string // label of the accepting choice
}

// Confirmer asks the user to accept a prompt. It returns false on decline
// or when ctx ends first.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(context.Context, Prompt) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, p Prompt) bool { return f(ctx, p) }

type declineAll struct{}

func (declineAll) Confirm(context.Context, Prompt) bool { return false }

type discard struct{}

func (discard) Notify(Notice) {}
