package rest

import (
	"context"
	"net/url"

	"github.com/and161185/newsadmin/internal/convert"
	"github.com/and161185/newsadmin/internal/gateway"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/repository"
)

// Record is a decodable entity with a server-issued id.
type Record interface {
	RecordID() string
}

// Input is a submitted form split into text fields and attachments.
type Input interface {
	Fields() map[string]string
	Files() map[string]*model.File
}

// Entities is a REST collection resource.
type Entities[T Record, In Input] struct {
	gw  Gateway
	url string
}

var (
	_ repository.AuthorRepository   = (*Entities[model.Author, model.AuthorInput])(nil)
	_ repository.CategoryRepository = (*Entities[model.Category, model.CategoryInput])(nil)
)

// NewEntities returns the collection at base+path.
func NewEntities[T Record, In Input](gw Gateway, base, path string) *Entities[T, In] {
	return &Entities[T, In]{gw: gw, url: join(base, path)}
}

// NewAuthors returns the authors resource.
func NewAuthors(gw Gateway, base string) *Entities[model.Author, model.AuthorInput] {
	return NewEntities[model.Author, model.AuthorInput](gw, base, PathAuthors)
}

// NewCategories returns the categories resource.
func NewCategories(gw Gateway, base string) *Entities[model.Category, model.CategoryInput] {
	return NewEntities[model.Category, model.CategoryInput](gw, base, PathCategory)
}

func (e *Entities[T, In]) item(id string) string { return e.url + "/" + url.PathEscape(id) }

func (e *Entities[T, In]) List(ctx context.Context, p model.ListParams) (repository.Page[T], error) {
	env := e.gw.Get(ctx, gateway.Request{URL: e.url + "?" + query(p)})
	if err := env.Err(); err != nil {
		return repository.Page[T]{}, err
	}
	items, pg, err := convert.DecodeList[T](env.Data)
	if err != nil {
		return repository.Page[T]{}, malformed(env, err)
	}
	return repository.Page[T]{Items: items, Pagination: pg}, nil
}

func (e *Entities[T, In]) Get(ctx context.Context, id string) (T, error) {
	return e.record(e.gw.Get(ctx, gateway.Request{URL: e.item(id)}))
}

// Create always submits multipart so attachments and fields travel together.
func (e *Entities[T, In]) Create(ctx context.Context, in In) (T, error) {
	return e.record(e.gw.Post(ctx, gateway.Request{
		URL:  e.url,
		Data: gateway.NewForm(in.Fields(), in.Files()),
		Mode: gateway.ModeForm,
	}))
}

// Update sends multipart when attachments are present and JSON otherwise.
func (e *Entities[T, In]) Update(ctx context.Context, id string, in In) (T, error) {
	req := gateway.Request{URL: e.item(id)}
	if files := in.Files(); len(files) > 0 {
		req.Data, req.Mode = gateway.NewForm(in.Fields(), files), gateway.ModeForm
	} else {
		req.Data, req.Mode = in.Fields(), gateway.ModeJSON
	}
	return e.record(e.gw.Put(ctx, req))
}

func (e *Entities[T, In]) SetStatus(ctx context.Context, id string, active bool) (T, error) {
	return e.record(e.gw.Put(ctx, gateway.Request{
		URL:  e.item(id) + "/status",
		Data: model.StatusInput{IsActive: active},
		Mode: gateway.ModeJSON,
	}))
}

func (e *Entities[T, In]) Delete(ctx context.Context, id string) error {
	return e.gw.Delete(ctx, gateway.Request{URL: e.item(id)}).Err()
}

func (e *Entities[T, In]) DeleteMany(ctx context.Context, ids []string) error {
	return e.gw.Delete(ctx, gateway.Request{
		URL: e.url,
		Data: struct {
			IDs []string `json:"ids"`
		}{IDs: ids},
		Mode: gateway.ModeJSON,
	}).Err()
}

func (e *Entities[T, In]) record(env gateway.Envelope) (T, error) {
	var zero T
	if err := env.Err(); err != nil {
		return zero, err
	}
	rec, _, err := convert.DecodeRecord[T](env.Data)
	if err != nil {
		return zero, malformed(env, err)
	}
	return rec, nil
}
