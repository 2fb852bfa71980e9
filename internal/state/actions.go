package state

import (
	"github.com/and161185/newsadmin/internal/model"
)

// Action is a dispatched intent or result. The set is closed: only this
// package defines actions.
type Action interface {
	actionName() string
}

// Op names a collection operation.
type Op string

const (
	OpGetAll       Op = "getAll"
	OpGetByID      Op = "getById"
	OpCreate       Op = "create"
	OpUpdate       Op = "update"
	OpUpdateStatus Op = "updateStatus"
	OpDelete       Op = "delete"
	OpDeleteMany   Op = "deleteMany"
)

// Record is an entity with a server-issued id.
type Record interface {
	RecordID() string
}

// Collection actions. T selects the slice they apply to.
type (
	// Request is the intent of any collection operation.
	Request[T Record] struct{ Op Op }
	// SetAll replaces the items with a freshly loaded page.
	SetAll[T Record] struct {
		Items      []T
		Pagination *model.Pagination
	}
	// SetOne stores the record loaded by id as the selection.
	SetOne[T Record] struct{ Record T }
	// CreateSuccess adds the created record.
	CreateSuccess[T Record] struct{ Record T }
	// UpdateSuccess replaces the record in place and selects it. Also used by status updates.
	UpdateSuccess[T Record] struct {
		Op     Op
		Record T
	}
	// DeleteSuccess removes every listed id in one transition.
	DeleteSuccess[T Record] struct{ IDs []string }
	// Failure ends any collection operation with a message.
	Failure[T Record] struct {
		Op      Op
		Message string
	}
)

func (a Request[T]) actionName() string       { return sliceName[T]() + "/" + string(a.Op) }
func (SetAll[T]) actionName() string          { return sliceName[T]() + "/setAll" }
func (SetOne[T]) actionName() string          { return sliceName[T]() + "/setOne" }
func (CreateSuccess[T]) actionName() string   { return sliceName[T]() + "/createSuccess" }
func (a UpdateSuccess[T]) actionName() string { return sliceName[T]() + "/" + string(a.Op) + "Success" }
func (DeleteSuccess[T]) actionName() string   { return sliceName[T]() + "/deleteSuccess" }
func (a Failure[T]) actionName() string       { return sliceName[T]() + "/" + string(a.Op) + "Failure" }

func sliceName[T Record]() string {
	var zero T
	switch any(zero).(type) {
	case model.Author:
		return "authors"
	case model.Category:
		return "categories"
	}
	return "records"
}

// Auth actions.
type (
	LoginRequest    struct{}
	LoginSuccess    struct{ Email string }
	LoginFailure    struct{ Message string }
	LogoutRequest   struct{}
	Logout          struct{} // resets the auth slice
	SessionRestored struct{ Email string }
	ClearError      struct{}
)

func (LoginRequest) actionName() string    { return "auth/loginRequest" }
func (LoginSuccess) actionName() string    { return "auth/loginSuccess" }
func (LoginFailure) actionName() string    { return "auth/loginFailure" }
func (LogoutRequest) actionName() string   { return "auth/logoutRequest" }
func (Logout) actionName() string          { return "auth/logout" }
func (SessionRestored) actionName() string { return "auth/sessionRestored" }
func (ClearError) actionName() string      { return "auth/clearError" }

// Dashboard actions.
type (
	DashboardRequest struct{}
	SetDashboard     struct{ Data model.Dashboard }
	DashboardFailure struct{ Message string }
	ToggleSidebar    struct{}
)

func (DashboardRequest) actionName() string { return "dashboard/request" }
func (SetDashboard) actionName() string     { return "dashboard/set" }
func (DashboardFailure) actionName() string { return "dashboard/failure" }
func (ToggleSidebar) actionName() string    { return "dashboard/toggleSidebar" }

// Name returns the log name of an action.
func Name(a Action) string { return a.actionName() }
