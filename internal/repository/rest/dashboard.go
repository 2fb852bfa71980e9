package rest

import (
	"context"

	"github.com/and161185/newsadmin/internal/gateway"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/repository"
)

// Dashboard is the dashboard resource.
type Dashboard struct {
	gw  Gateway
	url string
}

var _ repository.DashboardRepository = (*Dashboard)(nil)

// NewDashboard returns the dashboard resource.
func NewDashboard(gw Gateway, base string) *Dashboard {
	return &Dashboard{gw: gw, url: join(base, PathDashboard)}
}

func (d *Dashboard) Get(ctx context.Context) (model.Dashboard, error) {
	env := d.gw.Get(ctx, gateway.Request{URL: d.url})
	if err := env.Err(); err != nil {
		return nil, err
	}
	out := model.Dashboard{}
	if err := env.Decode(&out); err != nil {
		return nil, malformed(env, err)
	}
	return out, nil
}
