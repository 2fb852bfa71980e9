package state

import "github.com/and161185/newsadmin/internal/model"

// Dashboard is the dashboard slice together with the layout sidebar flag.
type Dashboard struct {
	SidebarOpen bool
	Data        model.Dashboard
	Loading     bool
	Error       string
}

// NewDashboard returns the initial dashboard slice: sidebar open, no data.
func NewDashboard() Dashboard { return Dashboard{SidebarOpen: true} }

// Reduce applies a to the dashboard slice.
func (s Dashboard) Reduce(a Action) (Dashboard, bool) {
	switch a := a.(type) {
	case DashboardRequest:
		s.Loading, s.Error = true, ""
	case SetDashboard:
		s.Data, s.Loading, s.Error = a.Data, false, ""
	case DashboardFailure:
		// a failed load shows an empty dashboard rather than stale figures
		s.Data, s.Loading, s.Error = model.Dashboard{}, false, a.Message
	case ToggleSidebar:
		s.SidebarOpen = !s.SidebarOpen
	default:
		return s, false
	}
	return s, true
}
