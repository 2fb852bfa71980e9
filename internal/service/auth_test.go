package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/state"
)

func loginOK(access string) func(context.Context, model.Credentials) (model.LoginResult, error) {
	return func(_ context.Context, c model.Credentials) (model.LoginResult, error) {
		res := model.LoginResult{AccessToken: access, RefreshToken: "r1"}
		res.Author.Email = c.Email
		return res, nil
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.auth.login = loginOK("t1")

	err := h.c.Auth.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)

	sess := h.c.Auth.Session()
	require.Equal(t, model.Session{
		AccessToken:      "t1",
		RefreshToken:     "r1",
		IsAuthenticated:  true,
		CurrentUserEmail: "a@b.com",
	}, sess)
	require.Equal(t, "t1", h.tokens.AccessToken())

	steps := h.steps()
	require.Len(t, steps, 2)
	require.True(t, steps[0].Auth.Loading)
	require.False(t, steps[1].Auth.Loading)

	notes := h.notes.all()
	require.Len(t, notes, 1)
	require.Equal(t, LevelSuccess, notes[0].Level)
	require.Equal(t, "Login Successful", notes[0].Title)
}

func TestLogin_ValidationNeverDispatches(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	err := h.c.Auth.Login(context.Background(), model.Credentials{Email: " ", Password: ""})
	var ve *errs.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Email is required", ve.Fields["email"])
	require.Equal(t, "Password is required", ve.Fields["password"])
	require.Zero(t, h.auth.count())
	require.Empty(t, h.steps())
	require.Empty(t, h.notes.all())
}

func TestLogin_FailureSurfacesServerMessage(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.auth.login = func(context.Context, model.Credentials) (model.LoginResult, error) {
		return model.LoginResult{}, &errs.APIError{Status: 401, Message: "Invalid credentials"}
	}

	err := h.c.Auth.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "bad"})
	require.Error(t, err)

	auth := h.store.Snapshot().Auth
	require.False(t, auth.IsAuthenticated)
	require.False(t, auth.Loading)
	require.Equal(t, "Invalid credentials", auth.Error)

	errsShown := h.notes.levels(LevelError)
	require.Len(t, errsShown, 1)
	require.Equal(t, "Invalid credentials", errsShown[0].Text)
	require.Empty(t, h.notes.levels(LevelWarning), "a failed login is not a forced logout")
}

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.auth.login = func(context.Context, model.Credentials) (model.LoginResult, error) {
		return model.LoginResult{}, &errs.APIError{Status: 400, Message: "Invalid credentials"}
	}
	creds := model.Credentials{Email: "a@b.com", Password: "bad"}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, h.c.Auth.Login(ctx, creds))
	}
	err := h.c.Auth.Login(ctx, creds)
	require.ErrorIs(t, err, errs.ErrRateLimited)
	require.Equal(t, 3, h.auth.count(), "locked login never reaches the backend")
	require.Contains(t, h.store.Snapshot().Auth.Error, "Too many failed attempts")
}

func TestLogin_ClearsStaleToken(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	require.NoError(t, h.tokens.Save(token(t, time.Now().Add(-time.Hour), ""), "old-refresh"))
	h.auth.login = func(context.Context, model.Credentials) (model.LoginResult, error) {
		return model.LoginResult{}, &errs.APIError{Status: 400, Message: "nope"}
	}

	require.Error(t, h.c.Auth.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "x"}))
	pair, err := h.tokens.Load()
	require.NoError(t, err)
	require.True(t, pair.Empty())
}

func TestLogin_DuplicateIsBusy(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	h.auth.login = func(ctx context.Context, c model.Credentials) (model.LoginResult, error) {
		close(entered)
		<-release
		return loginOK("t1")(ctx, c)
	}

	done := make(chan error, 1)
	go func() {
		done <- h.c.Auth.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "x"})
	}()
	<-entered
	err := h.c.Auth.Login(context.Background(), model.Credentials{Email: "a@b.com", Password: "x"})
	require.ErrorIs(t, err, errs.ErrBusy)
	close(release)
	require.NoError(t, <-done)
	require.Equal(t, 1, h.auth.count())
}

func TestLogout_AlwaysResets(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.auth.login = loginOK("t1")
	ctx := context.Background()
	require.NoError(t, h.c.Auth.Login(ctx, model.Credentials{Email: "a@b.com", Password: "x"}))

	require.NoError(t, h.c.Auth.Logout(ctx))
	require.Equal(t, state.Auth{}, h.store.Snapshot().Auth)
	require.Equal(t, "", h.tokens.AccessToken())
	notes := h.notes.all()
	require.Equal(t, "Logout Successful", notes[len(notes)-1].Title)
}

func TestCheckSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no token", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.ErrorIs(t, h.c.Auth.CheckSession(ctx), errs.ErrNoToken)
		require.Empty(t, h.steps())
	})

	t.Run("valid token restores", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.NoError(t, h.tokens.Save(token(t, time.Now().Add(time.Hour), "a@b.com"), "r1"))
		require.NoError(t, h.c.Auth.CheckSession(ctx))
		auth := h.store.Snapshot().Auth
		require.True(t, auth.IsAuthenticated)
		require.Equal(t, "a@b.com", auth.Email)
	})

	t.Run("expired token forces logout", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)
		require.NoError(t, h.tokens.Save(token(t, time.Now().Add(-time.Minute), "a@b.com"), "r1"))
		require.ErrorIs(t, h.c.Auth.CheckSession(ctx), errs.ErrSessionExpired)
		pair, _ := h.tokens.Load()
		require.True(t, pair.Empty())
		require.Equal(t, state.Auth{}, h.store.Snapshot().Auth)
		warn := h.notes.levels(LevelWarning)
		require.Len(t, warn, 1)
		require.Equal(t, "Session Expired", warn[0].Title)
	})
}

func TestEnforceExpiry(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	ctx := context.Background()
	require.False(t, h.c.Auth.EnforceExpiry(ctx))

	require.NoError(t, h.tokens.Save(token(t, time.Now().Add(time.Hour), ""), "r"))
	require.False(t, h.c.Auth.EnforceExpiry(ctx))

	require.NoError(t, h.tokens.Save(token(t, time.Now().Add(-time.Hour), ""), "r"))
	require.True(t, h.c.Auth.EnforceExpiry(ctx))
	require.Equal(t, "", h.tokens.AccessToken())
}

func TestForcedLogoutOnRepeatedUnauthorized(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	require.NoError(t, h.tokens.Save("t1", "r1"))
	require.NoError(t, h.store.Dispatch(state.LoginSuccess{Email: "a@b.com"}))

	unauthorized := true
	h.categories.list = func(context.Context, model.ListParams) (repositoryPage, error) {
		if unauthorized {
			return repositoryPage{}, &errs.APIError{Status: 401, Message: "jwt expired"}
		}
		return repositoryPage{}, nil
	}
	ctx := context.Background()

	// a success in between resets the count
	require.Error(t, h.c.Categories.GetAll(ctx, model.ListParams{}))
	unauthorized = false
	require.NoError(t, h.c.Categories.GetAll(ctx, model.ListParams{}))
	unauthorized = true
	require.Error(t, h.c.Categories.GetAll(ctx, model.ListParams{}))
	require.True(t, h.store.Snapshot().Auth.IsAuthenticated)
	require.Equal(t, "t1", h.tokens.AccessToken())

	err := h.c.Categories.GetAll(ctx, model.ListParams{})
	require.True(t, errors.Is(err, errs.ErrUnauthorized))
	require.False(t, h.store.Snapshot().Auth.IsAuthenticated)
	require.Equal(t, "", h.tokens.AccessToken())

	require.Len(t, h.notes.levels(LevelWarning), 1)
	require.Len(t, h.notes.levels(LevelError), 2, "the terminating 401 shows the session notice only")
}
