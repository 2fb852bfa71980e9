// Package rest implements the repositories over the admin REST backend.
package rest

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/gateway"
	"github.com/and161185/newsadmin/internal/model"
)

// Resource paths relative to the API base URL.
const (
	PathAuthors   = "admin/authors"
	PathCategory  = "admin/category"
	PathDashboard = "admin/get_dashboard"
	PathLogin     = "admin/authors/login"
)

// Gateway is the subset of *gateway.Client used by the resources.
type Gateway interface {
	Get(ctx context.Context, r gateway.Request) gateway.Envelope
	Post(ctx context.Context, r gateway.Request) gateway.Envelope
	Put(ctx context.Context, r gateway.Request) gateway.Envelope
	Delete(ctx context.Context, r gateway.Request) gateway.Envelope
}

// join appends path to base, which is used as given apart from a missing trailing slash.
func join(base, path string) string {
	if base != "" && !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + path
}

// query encodes list filters. Unset optional filters are omitted.
func query(p model.ListParams) string {
	p = p.Normalize()
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("limit", strconv.Itoa(p.Limit))
	v.Set("sortBy", p.SortBy)
	v.Set("sortOrder", p.SortOrder)
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Role != "" {
		v.Set("role", p.Role)
	}
	if p.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*p.IsActive))
	}
	if p.IsVerified != nil {
		v.Set("isVerified", strconv.FormatBool(*p.IsVerified))
	}
	return v.Encode()
}

// malformed reports undecodable data of a successful envelope as a failure.
func malformed(env gateway.Envelope, err error) error {
	return &errs.APIError{Status: env.Status, Message: "malformed response data: " + err.Error()}
}
