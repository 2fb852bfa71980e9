package state

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/and161185/newsadmin/internal/model"
)

func cat(id, title string) model.Category { return model.Category{ID: id, Title: title} }

func TestCollection_Transitions(t *testing.T) {
	t.Parallel()
	pg := &model.Pagination{TotalCount: 2, CurrentPage: 1, TotalPages: 1}
	start := Collection[model.Category]{
		Items:   []model.Category{cat("c1", "a"), cat("c2", "b")},
		Success: true,
		Error:   "old",
	}

	tests := []struct {
		name   string
		action Action
		want   Collection[model.Category]
	}{
		{
			name:   "intent resets flags",
			action: Request[model.Category]{Op: OpCreate},
			want: Collection[model.Category]{
				Items:   start.Items,
				Loading: true,
			},
		},
		{
			name:   "set all replaces and is not a success",
			action: SetAll[model.Category]{Items: []model.Category{cat("c3", "c")}, Pagination: pg},
			want: Collection[model.Category]{
				Items:      []model.Category{cat("c3", "c")},
				Pagination: pg,
			},
		},
		{
			name:   "create appends",
			action: CreateSuccess[model.Category]{Record: cat("c3", "c")},
			want: Collection[model.Category]{
				Items:   []model.Category{cat("c1", "a"), cat("c2", "b"), cat("c3", "c")},
				Success: true,
			},
		},
		{
			name:   "create with known id replaces",
			action: CreateSuccess[model.Category]{Record: cat("c2", "B")},
			want: Collection[model.Category]{
				Items:   []model.Category{cat("c1", "a"), cat("c2", "B")},
				Success: true,
			},
		},
		{
			name:   "update replaces in place and selects",
			action: UpdateSuccess[model.Category]{Op: OpUpdate, Record: cat("c1", "A")},
			want: Collection[model.Category]{
				Items:    []model.Category{cat("c1", "A"), cat("c2", "b")},
				Selected: ptr(cat("c1", "A")),
				Success:  true,
			},
		},
		{
			name:   "delete many in one step",
			action: DeleteSuccess[model.Category]{IDs: []string{"c1", "c2", "zz"}},
			want: Collection[model.Category]{
				Items:   []model.Category{},
				Success: true,
			},
		},
		{
			name:   "failure keeps items",
			action: Failure[model.Category]{Op: OpCreate, Message: "Email already exists"},
			want: Collection[model.Category]{
				Items: start.Items,
				Error: "Email already exists",
			},
		},
		{
			name:   "set one selects",
			action: SetOne[model.Category]{Record: cat("c9", "z")},
			want: Collection[model.Category]{
				Items:    start.Items,
				Selected: ptr(cat("c9", "z")),
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := start.Reduce(tt.action)
			require.True(t, ok)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("state mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCollection_IgnoresOtherSlices(t *testing.T) {
	t.Parallel()
	c := NewCollection[model.Author]()
	_, ok := c.Reduce(Request[model.Category]{Op: OpGetAll})
	require.False(t, ok)
	_, ok = c.Reduce(LoginRequest{})
	require.False(t, ok)
}

func TestCollection_NoDuplicateIDs(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	c := NewCollection[model.Category]()
	latest := map[string]string{}

	for step := 0; step < 2000; step++ {
		id := fmt.Sprintf("c%d", rng.Intn(12))
		title := fmt.Sprintf("t%d", step)
		var a Action
		switch rng.Intn(4) {
		case 0:
			a = CreateSuccess[model.Category]{Record: cat(id, title)}
			latest[id] = title
		case 1:
			a = UpdateSuccess[model.Category]{Op: OpUpdate, Record: cat(id, title)}
			if _, ok := latest[id]; ok {
				latest[id] = title
			}
		case 2:
			a = DeleteSuccess[model.Category]{IDs: []string{id}}
			delete(latest, id)
		default:
			a = Request[model.Category]{Op: OpUpdate}
		}
		var ok bool
		c, ok = c.Reduce(a)
		require.True(t, ok)

		seen := map[string]bool{}
		for _, it := range c.Items {
			require.False(t, seen[it.ID], "duplicate id %s at step %d", it.ID, step)
			seen[it.ID] = true
			require.Equal(t, latest[it.ID], it.Title)
		}
		require.Len(t, c.Items, len(latest))
	}
}

func TestCollection_LoadingLifecycle(t *testing.T) {
	t.Parallel()
	terminals := []Action{
		SetAll[model.Author]{},
		SetOne[model.Author]{},
		CreateSuccess[model.Author]{},
		UpdateSuccess[model.Author]{Op: OpUpdate},
		DeleteSuccess[model.Author]{},
		Failure[model.Author]{Op: OpDelete, Message: "x"},
	}
	c := NewCollection[model.Author]()
	for _, term := range terminals {
		c, _ = c.Reduce(Request[model.Author]{Op: OpCreate})
		require.True(t, c.Loading)
		require.False(t, c.Success, "stale success must not coexist with loading")
		c, _ = c.Reduce(term)
		require.False(t, c.Loading, Name(term))
	}
}

// One Loading flag serves the list and the selection: the first terminal
// action clears it, the other run's terminal lands without raising it again.
func TestCollection_SharedLoadingFlag(t *testing.T) {
	t.Parallel()
	c := NewCollection[model.Category]()
	c, _ = c.Reduce(Request[model.Category]{Op: OpGetAll})
	c, _ = c.Reduce(Request[model.Category]{Op: OpGetByID})
	require.True(t, c.Loading)

	c, _ = c.Reduce(SetOne[model.Category]{Record: cat("c1", "a")})
	require.False(t, c.Loading)

	c, _ = c.Reduce(SetAll[model.Category]{Items: []model.Category{cat("c1", "a")}})
	require.False(t, c.Loading)
	require.Equal(t, "c1", c.Selected.ID)
	require.Len(t, c.Items, 1)
}

func TestSetAll_Idempotent(t *testing.T) {
	t.Parallel()
	page := SetAll[model.Category]{Items: []model.Category{cat("c1", "a"), cat("c2", "b")}}
	c := NewCollection[model.Category]()
	once, _ := c.Reduce(page)
	twice, _ := once.Reduce(page)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Fatalf("second identical load changed state:\n%s", diff)
	}
}

func TestAuth_Reduce(t *testing.T) {
	t.Parallel()
	s := Auth{}
	s, _ = s.Reduce(LoginRequest{})
	require.Equal(t, Auth{Loading: true}, s)
	s, _ = s.Reduce(LoginSuccess{Email: "a@b.com"})
	require.Equal(t, Auth{IsAuthenticated: true, Email: "a@b.com"}, s)
	s, _ = s.Reduce(LoginFailure{Message: "nope"})
	require.Equal(t, "a@b.com", s.Email, "only logout clears the email")
	require.Equal(t, "nope", s.Error)
	s, _ = s.Reduce(ClearError{})
	require.Equal(t, "", s.Error)
	s, _ = s.Reduce(LogoutRequest{})
	require.True(t, s.Loading)
	s, _ = s.Reduce(Logout{})
	require.Equal(t, Auth{}, s)
	s, _ = s.Reduce(SessionRestored{Email: "x@y.z"})
	require.Equal(t, Auth{IsAuthenticated: true, Email: "x@y.z"}, s)
}

func TestDashboard_Reduce(t *testing.T) {
	t.Parallel()
	s := NewDashboard()
	require.True(t, s.SidebarOpen)
	s, _ = s.Reduce(ToggleSidebar{})
	require.False(t, s.SidebarOpen)

	s, _ = s.Reduce(DashboardRequest{})
	require.True(t, s.Loading)
	s, _ = s.Reduce(SetDashboard{Data: model.Dashboard{"authors": 3}})
	require.Equal(t, model.Dashboard{"authors": 3}, s.Data)

	s, _ = s.Reduce(DashboardFailure{Message: "down"})
	require.Equal(t, model.Dashboard{}, s.Data)
	require.Equal(t, "down", s.Error)
	require.False(t, s.Loading)
}

type bogus struct{}

func (bogus) actionName() string { return "bogus" }

func TestReduce_UnknownActionPanics(t *testing.T) {
	t.Parallel()
	require.Panics(t, func() { Reduce(Initial(), bogus{}) })
}

func TestStore_DeleteManyIsOneTransition(t *testing.T) {
	t.Parallel()
	st := New(zaptest.NewLogger(t))
	require.NoError(t, st.Dispatch(SetAll[model.Author]{Items: []model.Author{{ID: "id1"}, {ID: "id2"}, {ID: "id3"}}}))

	var seen [][]string
	unsub := st.Subscribe(func(s State) {
		ids := []string{}
		for _, a := range s.Authors.Items {
			ids = append(ids, a.ID)
		}
		seen = append(seen, ids)
	})
	defer unsub()

	require.NoError(t, st.Dispatch(Request[model.Author]{Op: OpDeleteMany}))
	require.NoError(t, st.Dispatch(DeleteSuccess[model.Author]{IDs: []string{"id1", "id2"}}))

	require.Equal(t, [][]string{{"id1", "id2", "id3"}, {"id3"}}, seen)
}

func TestStore_SubscribeAndClose(t *testing.T) {
	t.Parallel()
	st := New(nil)
	calls := 0
	unsub := st.Subscribe(func(State) { calls++ })

	require.NoError(t, st.Dispatch(ToggleSidebar{}))
	unsub()
	require.NoError(t, st.Dispatch(ToggleSidebar{}))
	require.Equal(t, 1, calls)
	require.True(t, st.Snapshot().Dashboard.SidebarOpen)

	st.Close()
	require.ErrorIs(t, st.Dispatch(ToggleSidebar{}), ErrClosed)
}

func TestName(t *testing.T) {
	t.Parallel()
	require.Equal(t, "authors/getAll", Name(Request[model.Author]{Op: OpGetAll}))
	require.Equal(t, "categories/deleteSuccess", Name(DeleteSuccess[model.Category]{}))
	require.Equal(t, "authors/updateStatusSuccess", Name(UpdateSuccess[model.Author]{Op: OpUpdateStatus}))
}

func ptr[T any](v T) *T { return &v }
