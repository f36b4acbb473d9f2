package supasaas

import (
	"context"
	"reflect"

	supa "github.com/nedpals/supabase-go"

	"github.com/ashrobertsdragon/SupaSaaS/logging"
	"github.com/ashrobertsdragon/SupaSaaS/validate"
)

var updatesType = reflect.TypeOf(map[string]any{})

// Auth wraps the authentication operations. Every operation runs on the
// anonymous-tier handle so the backend's row-level policies always apply
// to end-user sessions, and every failure is logged before it is returned.
type Auth struct {
	client   *Client
	log      logging.Func
	validate validate.Func
}

// NewAuth builds the auth facade on top of client.
func NewAuth(client *Client, opts ...Option) *Auth {
	s := newSettings(opts...)
	return &Auth{client: client, log: s.log, validate: s.validate}
}

// SignUp registers a new user and returns the created account.
func (a *Auth) SignUp(ctx context.Context, email, password string) (*supa.User, error) {
	api := a.client.Select(false)
	if api == nil {
		a.log("error", "signup", ErrClientNotInitialized, logging.F("email", email))
		return nil, ErrClientNotInitialized
	}

	user, err := api.Auth.SignUp(ctx, supa.UserCredentials{Email: email, Password: password})
	if err != nil {
		a.log("error", "signup", err, logging.F("email", email))
		return nil, err
	}
	return user, nil
}

// SignIn authenticates a user and returns the session details, including
// the access token the other operations expect.
func (a *Auth) SignIn(ctx context.Context, email, password string) (*supa.AuthenticatedDetails, error) {
	api := a.client.Select(false)
	if api == nil {
		a.log("error", "login", ErrClientNotInitialized, logging.F("email", email))
		return nil, ErrClientNotInitialized
	}

	details, err := api.Auth.SignIn(ctx, supa.UserCredentials{Email: email, Password: password})
	if err != nil {
		a.log("error", "login", err, logging.F("email", email))
		return nil, err
	}
	return details, nil
}

// SignOut revokes the session behind accessToken. A failed revocation is
// not fatal to the caller, so errors are logged and swallowed.
func (a *Auth) SignOut(ctx context.Context, accessToken string) {
	api := a.client.Select(false)
	if api == nil {
		a.log("error", "logout", ErrClientNotInitialized)
		return
	}

	if err := api.Auth.SignOut(ctx, accessToken); err != nil {
		a.log("error", "logout", err)
	}
}

// ResetPassword sends a password recovery mail pointing back at
// {domain}/reset-password.html.
func (a *Auth) ResetPassword(ctx context.Context, email, domain string) error {
	redirect := domain + "/reset-password.html"

	api := a.client.Select(false)
	if api == nil {
		a.log("error", "reset password", ErrClientNotInitialized, logging.F("email", email), logging.F("domain", domain))
		return ErrClientNotInitialized
	}

	if err := api.Auth.ResetPasswordForEmail(ctx, email, redirect); err != nil {
		a.log("error", "reset password", err, logging.F("email", email), logging.F("domain", domain))
		return err
	}
	return nil
}

// UpdateUser applies updates to the user behind accessToken. The updates
// map must be present; session-missing and other SDK errors are logged and
// returned.
func (a *Auth) UpdateUser(ctx context.Context, accessToken string, updates map[string]any) (*supa.User, error) {
	if err := a.validate(updates, "updates", updatesType, false); err != nil {
		a.log("error", "update user", err, logging.F("updates", updates))
		return nil, err
	}

	api := a.client.Select(false)
	if api == nil {
		a.log("error", "update user", ErrClientNotInitialized, logging.F("updates", updates))
		return nil, ErrClientNotInitialized
	}

	user, err := api.Auth.UpdateUser(ctx, accessToken, updates)
	if err != nil {
		a.log("error", "update user", err, logging.F("updates", updates))
		return nil, err
	}
	return user, nil
}
