package api

import (
	"context"
	"fmt"
	"net/http"
)

const authPath = "/auth"

// Login exchanges credentials for a session. The token is not installed on
// the client; callers decide when to SetToken.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	return c.session(ctx, authPath+"/login", creds)
}

func (c *Client) Register(ctx context.Context, reg Registration) (Session, error) {
	return c.session(ctx, authPath+"/register", reg)
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, authPath+"/logout", nil, struct{}{})
	return err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	env, err := c.do(ctx, http.MethodGet, authPath+"/me", nil, nil)
	if err != nil {
		return User{}, err
	}
	if env.User != nil {
		return *env.User, nil
	}
	var u User
	err = env.decodeData(&u)
	return u, err
}

func (c *Client) session(ctx context.Context, path string, body any) (Session, error) {
	env, err := c.do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return Session{}, err
	}
	s := Session{Token: env.Token}
	if env.User != nil {
		s.User = *env.User
	}
	if s.Token == "" {
		var nested struct {
			Token string `json:"token"`
			User  *User  `json:"user"`
		}
		if err := env.decodeData(&nested); err != nil {
			return Session{}, err
		}
		s.Token = nested.Token
		if nested.User != nil {
			s.User = *nested.User
		}
	}
	if s.Token == "" {
		return Session{}, fmt.Errorf("response carried no token")
	}
	return s, nil
}
