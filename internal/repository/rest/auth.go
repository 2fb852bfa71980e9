package rest

import (
	"context"

	"github.com/and161185/newsadmin/internal/errs"
	"github.com/and161185/newsadmin/internal/gateway"
	"github.com/and161185/newsadmin/internal/model"
	"github.com/and161185/newsadmin/internal/repository"
)

// Auth is the login resource.
type Auth struct {
	gw  Gateway
	url string
}

var _ repository.AuthRepository = (*Auth)(nil)

// NewAuth returns the login resource.
func NewAuth(gw Gateway, base string) *Auth {
	return &Auth{gw: gw, url: join(base, PathLogin)}
}

// Login posts the credentials as JSON without a bearer token.
func (a *Auth) Login(ctx context.Context, c model.Credentials) (model.LoginResult, error) {
	env := a.gw.Post(ctx, gateway.Request{
		URL: a.url,
		Data: map[string]string{
			"email":    c.Email,
			"password": c.Password,
		},
		Mode:   gateway.ModeJSON,
		NoAuth: true,
	})
	if err := env.Err(); err != nil {
		return model.LoginResult{}, err
	}
	var res model.LoginResult
	if err := env.Decode(&res); err != nil {
		return model.LoginResult{}, malformed(env, err)
	}
	if res.AccessToken == "" {
		return model.LoginResult{}, &errs.APIError{Status: env.Status, Message: "login response carries no access token"}
	}
	return res, nil
}
