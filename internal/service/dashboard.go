package service

import (
	"context"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/repository"
	"github.com/and161185/newsadmin/internal/state"
)

// DashboardService loads the dashboard.
type DashboardService struct {
	*core
	repo repository.DashboardRepository
	get  latest
}

func newDashboardService(c *core, repo repository.DashboardRepository) *DashboardService {
	return &DashboardService{core: c, repo: repo}
}

// Get loads the dashboard with "latest wins" semantics.
func (s *DashboardService) Get(ctx context.Context) error {
	onPanic := func() { s.dispatch(state.DashboardFailure{Message: errs.ErrInternal.Error()}) }
	return s.run(ctx, "dashboard.get", onPanic, func(ctx context.Context) error {
		ctx, gen := s.get.begin(ctx)
		defer s.get.end(gen)
		if !s.get.start(gen, func() { s.dispatch(state.DashboardRequest{}) }) {
			return errs.ErrSuperseded
		}

		data, err := s.repo.Get(ctx)
		var forced bool
		ok := s.get.commit(gen, func() {
			forced = s.observe(err)
			if err != nil {
				s.dispatch(state.DashboardFailure{Message: message(err, "Failed to fetch dashboard data")})
				return
			}
			s.dispatch(state.SetDashboard{Data: data})
		})
		if !ok {
			return errs.ErrSuperseded
		}
		if err != nil && !forced {
			s.notifyError(err, "Failed to fetch dashboard data")
		}
		return err
	})
}

// ToggleSidebar flips the sidebar flag.
func (s *DashboardService) ToggleSidebar() {
	s.dispatch(state.ToggleSidebar{})
}
