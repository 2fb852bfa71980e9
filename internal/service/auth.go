package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/limiter"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/repository"
	"github.com/and161185/newsadmin/internal/state"
	"github.com/and161185/newsadmin/internal/tokenstore"
)

// AuthService runs login, logout and session checks.
type AuthService struct {
	*core
	repo  repository.AuthRepository
	lim   limiter.Limiter
	locks *leading
}

func newAuthService(c *core, repo repository.AuthRepository, lim limiter.Limiter) *AuthService {
	return &AuthService{core: c, repo: repo, lim: lim, locks: newLeading()}
}

// Login validates the credentials locally, exchanges them for tokens and
// persists the pair. A login already in flight makes this call return errs.ErrBusy.
func (s *AuthService) Login(ctx context.Context, c model.Credentials) error {
	if err := c.Validate(); err != nil {
		return err
	}
	release, ok := s.locks.try("login")
	if !ok {
		return errs.ErrBusy
	}
	defer release()

	onPanic := func() { s.dispatch(state.LoginFailure{Message: errs.ErrInternal.Error()}) }
	return s.run(ctx, "auth.login", onPanic, func(ctx context.Context) error {
		if err := s.checkLockout(ctx, c.Email); err != nil {
			return err
		}
		s.dropStaleToken()
		s.dispatch(state.LoginRequest{})

		res, err := s.repo.Login(ctx, c)
		if err != nil {
			return s.loginFailed(ctx, c.Email, message(err, "Login failed"), err)
		}
		if err := s.tokens.Save(res.AccessToken, res.RefreshToken); err != nil {
			return s.loginFailed(ctx, c.Email, "could not store session: "+err.Error(), err)
		}
		if s.lim != nil {
			if err := s.lim.Success(ctx, c.Email); err != nil {
				s.log.Warn("limiter success", zap.Error(err))
			}
		}
		s.resetUnauthorized()

		email := res.Author.Email
		if email == "" {
			email = tokenstore.EmailClaim(res.AccessToken)
		}
		if email == "" {
			email = c.Email
		}
		s.dispatch(state.LoginSuccess{Email: email})
		s.notify.Notify(Notice{Level: LevelSuccess, Title: "Login Successful"})
		return nil
	})
}

func (s *AuthService) checkLockout(ctx context.Context, email string) error {
	if s.lim == nil {
		return nil
	}
	allowed, retry, err := s.lim.Allow(ctx, email)
	if err != nil {
		s.log.Warn("limiter allow", zap.Error(err))
		return nil
	}
	if allowed {
		return nil
	}
	msg := fmt.Sprintf("Too many failed attempts. Try again in %s.", retry.Round(time.Second))
	s.dispatch(state.LoginFailure{Message: msg})
	s.notify.Notify(Notice{Level: LevelError, Title: "Login Failed", Text: msg})
	return fmt.Errorf("%w: retry in %s", errs.ErrRateLimited, retry.Round(time.Second))
}

// dropStaleToken clears a stored pair whose access token has expired so the
// new login starts from a clean store.
func (s *AuthService) dropStaleToken() {
	pair, err := s.tokens.Load()
	if err != nil {
		s.log.Warn("load tokens", zap.Error(err))
		return
	}
	if pair.AccessToken != "" && tokenstore.IsExpired(pair.AccessToken, s.now()) {
		if err := s.tokens.Clear(); err != nil {
			s.log.Warn("clear stale tokens", zap.Error(err))
		}
	}
}

func (s *AuthService) loginFailed(ctx context.Context, email, msg string, err error) error {
	s.dispatch(state.LoginFailure{Message: msg})
	s.notify.Notify(Notice{Level: LevelError, Title: "Login Failed", Text: msg})
	if s.lim != nil {
		if _, _, ferr := s.lim.Failure(ctx, email); ferr != nil {
			s.log.Warn("limiter failure", zap.Error(ferr))
		}
	}
	return err
}

// Logout ends the session locally. Tokens are cleared and the auth slice
// reset even when clearing the store fails; that error is returned.
func (s *AuthService) Logout(ctx context.Context) error {
	release, ok := s.locks.try("logout")
	if !ok {
		return errs.ErrBusy
	}
	defer release()

	return s.run(ctx, "auth.logout", func() { s.dispatch(state.Logout{}) }, func(context.Context) error {
		s.dispatch(state.LogoutRequest{})
		err := s.tokens.Clear()
		if err != nil {
			s.log.Error("clear tokens", zap.Error(err))
		}
		s.resetUnauthorized()
		s.dispatch(state.Logout{})
		s.notify.Notify(Notice{Level: LevelSuccess, Title: "Logout Successful"})
		return err
	})
}

// CheckSession runs at startup. An expired access token forces a logout and
// returns errs.ErrSessionExpired; a valid one restores the authenticated
// state. Without a stored access token errs.ErrNoToken is returned.
func (s *AuthService) CheckSession(ctx context.Context) error {
	return s.run(ctx, "auth.checkSession", nil, func(context.Context) error {
		pair, err := s.tokens.Load()
		if err != nil {
			return fmt.Errorf("load tokens: %w", err)
		}
		if pair.AccessToken == "" {
			return errs.ErrNoToken
		}
		if tokenstore.IsExpired(pair.AccessToken, s.now()) {
			s.forceLogout("token expired")
			return errs.ErrSessionExpired
		}
		s.dispatch(state.SessionRestored{Email: tokenstore.EmailClaim(pair.AccessToken)})
		return nil
	})
}

// EnforceExpiry forces a logout when a stored access token has expired.
// It reports whether the session was terminated. Used by periodic checks.
func (s *AuthService) EnforceExpiry(ctx context.Context) bool {
	var expired bool
	_ = s.run(ctx, "auth.enforceExpiry", nil, func(context.Context) error {
		pair, err := s.tokens.Load()
		if err != nil || pair.AccessToken == "" {
			return err
		}
		if tokenstore.IsExpired(pair.AccessToken, s.now()) {
			s.forceLogout("token expired")
			expired = true
		}
		return nil
	})
	return expired
}

// Session combines the stored tokens with the auth slice.
func (s *AuthService) Session() model.Session {
	pair, err := s.tokens.Load()
	if err != nil {
		s.log.Warn("load tokens", zap.Error(err))
	}
	auth := s.store.Snapshot().Auth
	return model.Session{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		IsAuthenticated:  auth.IsAuthenticated,
		CurrentUserEmail: auth.Email,
	}
}
