package api

import (
	"context"
	"net/http"
)

const tagsPath = "/tags"

func (c *Client) ListTags(ctx context.Context) ([]Tag, error) {
	env, err := c.do(ctx, http.MethodGet, tagsPath, nil, nil)
	if err != nil {
		return nil, err
	}
	var out []Tag
	if err := env.decodeData(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTag(ctx context.Context, id int64) (Tag, error) {
	return c.tag(ctx, http.MethodGet, idPath(tagsPath, id), nil)
}

func (c *Client) CreateTag(ctx context.Context, in TagInput) (Tag, error) {
	return c.tag(ctx, http.MethodPost, tagsPath, in)
}

func (c *Client) UpdateTag(ctx context.Context, id int64, in TagInput) (Tag, error) {
	return c.tag(ctx, http.MethodPut, idPath(tagsPath, id), in)
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, idPath(tagsPath, id), nil, nil)
	return err
}

func (c *Client) tag(ctx context.Context, method, path string, body any) (Tag, error) {
	env, err := c.do(ctx, method, path, nil, body)
	if err != nil {
		return Tag{}, err
	}
	var t Tag
	err = env.decodeData(&t)
	return t, err
}
