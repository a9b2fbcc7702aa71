package library

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Repository is the CRUD contract for the remote book collection. Every call
// is a single round trip: no batching, no retry.
type Repository interface {
	ListAll(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, id string) (Book, error)
	Create(ctx context.Context, book BookPayload) (Book, error)
	Update(ctx context.Context, id string, book BookPayload) (Book, error)
	Delete(ctx context.Context, id string) error
}

// Compile-time interface guard.
var _ Repository = (*Client)(nil)

// Client talks to the collection resource at a base URL:
//
//	GET    {base}        list
//	GET    {base}/{id}   fetch one
//	POST   {base}        create
//	PUT    {base}/{id}   replace
//	DELETE {base}/{id}   delete
type Client struct {
	baseURL string
	http    *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the transport. The default client has no timeout;
// a hung request blocks until ctx is cancelled.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a Client for the collection at baseURL. The URL is not
// validated; a bad one surfaces as a FetchError on the first call.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the collection URL requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) ListAll(ctx context.Context) ([]Book, error) {
	var books []Book
	if err := c.do(ctx, "fetch books", http.MethodGet, c.baseURL, nil, &books); err != nil {
		return nil, err
	}
	if books == nil {
		books = []Book{}
	}
	return books, nil
}

func (c *Client) GetByID(ctx context.Context, id string) (Book, error) {
	var b Book
	err := c.do(ctx, "fetch book", http.MethodGet, c.itemURL(id), nil, &b)
	return b, err
}

func (c *Client) Create(ctx context.Context, book BookPayload) (Book, error) {
	var b Book
	err := c.do(ctx, "create book", http.MethodPost, c.baseURL, book, &b)
	return b, err
}

func (c *Client) Update(ctx context.Context, id string, book BookPayload) (Book, error) {
	var b Book
	err := c.do(ctx, "update book", http.MethodPut, c.itemURL(id), book, &b)
	return b, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete book", http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

// do performs one request. body is JSON-encoded when non-nil; out receives
// the decoded response when non-nil, otherwise the body is discarded.
func (c *Client) do(ctx context.Context, op, method, target string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, Err: err}
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &FetchError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty response body")
		}
		return &FetchError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}
