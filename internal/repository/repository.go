// Package repository defines the backend resources consumed by the services.
package repository

import (
	"context"

	"github.com/and161185/newsadmin/internal/model"
)

// Page is one page of a list resource. Pagination is nil when the backend sent none.
type Page[T any] struct {
	Items      []T
	Pagination *model.Pagination
}

// Entities provides CRUD access to one record family.
// Failed calls return *errs.APIError; a 401 matches errs.ErrUnauthorized.
type Entities[T any, In any] interface {
	// List loads one page filtered by p.
	List(ctx context.Context, p model.ListParams) (Page[T], error)
	// Get loads a record by id.
	Get(ctx context.Context, id string) (T, error)
	// Create submits a new record. The zero T is returned when the backend echoes nothing.
	Create(ctx context.Context, in In) (T, error)
	// Update submits changed fields of a record.
	Update(ctx context.Context, id string, in In) (T, error)
	// SetStatus toggles the active flag through the status endpoint.
	SetStatus(ctx context.Context, id string, active bool) (T, error)
	// Delete removes one record.
	Delete(ctx context.Context, id string) error
	// DeleteMany removes a set of records in one call; it either fails or succeeds as a whole.
	DeleteMany(ctx context.Context, ids []string) error
}

// AuthorRepository is the authors resource.
type AuthorRepository = Entities[model.Author, model.AuthorInput]

// CategoryRepository is the categories resource.
type CategoryRepository = Entities[model.Category, model.CategoryInput]

// DashboardRepository loads the dashboard payload.
type DashboardRepository interface {
	Get(ctx context.Context) (model.Dashboard, error)
}

// AuthRepository exchanges credentials for tokens.
type AuthRepository interface {
	Login(ctx context.Context, c model.Credentials) (model.LoginResult, error)
}
