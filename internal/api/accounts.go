package api

import (
	"context"
	"net/http"
)

const accountsPath = "/accounts"

func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	env, err := c.do(ctx, http.MethodGet, accountsPath, nil, nil)
	if err != nil {
		return nil, err
	}
	var out []Account
	if err := env.decodeData(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetAccount(ctx context.Context, id int64) (Account, error) {
	return c.account(ctx, http.MethodGet, idPath(accountsPath, id), nil)
}

func (c *Client) CreateAccount(ctx context.Context, in AccountInput) (Account, error) {
	return c.account(ctx, http.MethodPost, accountsPath, in)
}

func (c *Client) UpdateAccount(ctx context.Context, id int64, in AccountInput) (Account, error) {
	return c.account(ctx, http.MethodPut, idPath(accountsPath, id), in)
}

func (c *Client) DeleteAccount(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, idPath(accountsPath, id), nil, nil)
	return err
}

func (c *Client) account(ctx context.Context, method, path string, body any) (Account, error) {
	env, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return Account{}, err
	}
	var a Account
	err = env.decodeData(&a)
	return a, err
}
