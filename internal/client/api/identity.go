package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/mlukic/formflow/internal/models"
)

// LoginMode selects how credentials are sent to POST /login; identity
// service deployments differ.
type LoginMode string

const (
	// LoginQuery sends credentials as query-string parameters
	// (default).
	LoginQuery LoginMode = "query"
	// LoginJSON sends a JSON body {email, password}.
	LoginJSON LoginMode = "json"
	// LoginForm sends form-encoded username/password fields.
	LoginForm LoginMode = "form"
)

// ErrNoToken means a 2xx login response carried no recognizable token
// field.
var ErrNoToken = errors.New("no token in login response")

// Identity talks to the identity service.
type Identity struct {
	caller
	mode LoginMode
}

// NewIdentity builds an identity client. mode defaults to LoginQuery;
// hc may be nil.
func NewIdentity(baseURL string, mode LoginMode, hc *http.Client) *Identity {
	if mode == "" {
		mode = LoginQuery
	}
	return &Identity{caller: newCaller(baseURL, hc), mode: mode}
}

// Register creates a new account.
func (c *Identity) Register(ctx context.Context, email, fullName, password string) error {
	req := models.RegisterRequest{Email: email, FullName: fullName, Password: password}
	return c.do(ctx, http.MethodPost, "/register", "", req, nil)
}

// Login exchanges credentials for a bearer token, using the configured
// credential mode. The token is accepted under access_token, token or
// jwt, optionally nested under data.
func (c *Identity) Login(ctx context.Context, email, password string) (string, error) {
	var resp models.TokenResponse
	var err error

	switch c.mode {
	case LoginJSON:
		body := map[string]string{"email": email, "password": password}
		err = c.do(ctx, http.MethodPost, "/login", "", body, &resp)
	case LoginForm:
		form := url.Values{"username": {email}, "password": {password}}
		err = c.doForm(ctx, "/login", form.Encode(), &resp)
	default:
		q := url.Values{"email": {email}, "password": {password}}
		err = c.do(ctx, http.MethodPost, "/login?"+q.Encode(), "", nil, &resp)
	}
	if err != nil {
		return "", err
	}

	tok := resp.BearerToken()
	if tok == "" {
		return "", ErrNoToken
	}
	return tok, nil
}

// Me fetches the account behind the token.
func (c *Identity) Me(ctx context.Context, token string) (models.User, error) {
	var u models.User
	err := c.do(ctx, http.MethodGet, "/me", token, nil, &u)
	return u, err
}
