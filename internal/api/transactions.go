package api

import (
	"context"
	"net/http"
)

const transactionsPath = "/transactions"

// ListTransactions returns one page. Pagination is nil when the server
// does not paginate.
func (c *Client) ListTransactions(ctx context.Context, q TransactionQuery) (Page[Transaction], error) {
	env, err := c.do(ctx, http.MethodGet, transactionsPath, q.Values(), nil)
	if err != nil {
		return Page[Transaction]{}, err
	}
	var items []Transaction
	if err := env.decodeData(&items); err != nil {
		return Page[Transaction]{}, err
	}
	return Page[Transaction]{Items: items, Pagination: env.Pagination}, nil
}

// Statistics returns income, expense and net for the same filters as the list.
func (c *Client) Statistics(ctx context.Context, q TransactionQuery) (Statistics, error) {
	env, err := c.do(ctx, http.MethodGet, transactionsPath+"/statistics", q.FilterValues(), nil)
	if err != nil {
		return Statistics{}, err
	}
	var s Statistics
	err = env.decodeData(&s)
	return s, err
}

func (c *Client) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return c.transaction(ctx, http.MethodGet, idPath(transactionsPath, id), nil)
}

func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (Transaction, error) {
	return c.transaction(ctx, http.MethodPost, transactionsPath, in)
}

func (c *Client) UpdateTransaction(ctx context.Context, id int64, in TransactionInput) (Transaction, error) {
	return c.transaction(ctx, http.MethodPut, idPath(transactionsPath, id), in)
}

// DeleteTransaction removes a transaction. For transfers the server also
// removes the paired movement.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, idPath(transactionsPath, id), nil, nil)
	return err
}

func (c *Client) transaction(ctx context.Context, method, path string, body any) (Transaction, error) {
	env, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return Transaction{}, err
	}
	var t Transaction
	err = env.decodeData(&t)
	return t, err
}
