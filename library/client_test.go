package library

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var reqs []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recordedRequest{
			Method:      r.Method,
			Path:        r.URL.EscapedPath(),
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL + "/books/"), &reqs
}

func writeJSON(w http.ResponseWriter, status int, v string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, v)
}

func TestClientListAll(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":"1","title":"Dune","author":"Frank Herbert","year":1965,"genre":"adventure","status":"available"},
			{"id":2,"title":"Emma","author":"Jane Austen","year":"1815","genre":"romantic","status":"issued"}]`)
	})

	books, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "1", books[0].ID)
	assert.Equal(t, "2", books[1].ID)
	assert.Equal(t, 1815, books[1].Year)

	require.Len(t, *reqs, 1)
	assert.Equal(t, http.MethodGet, (*reqs)[0].Method)
	assert.Equal(t, "/books", (*reqs)[0].Path)
}

func TestClientListAllNullBody(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `null`)
	})
	books, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestClientCreate(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":"42","title":"Dune","author":"Frank Herbert","year":1965,"genre":"adventure","status":"available"}`)
	})

	p := BookPayload{Title: "Dune", Author: "Frank Herbert", Year: 1965, Genre: GenreAdventure, Status: StatusAvailable}
	created, err := c.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "42", created.ID)
	assert.Equal(t, p, created.Payload())

	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/books", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
	assert.JSONEq(t, `{"title":"Dune","author":"Frank Herbert","year":1965,"genre":"adventure","status":"available"}`, req.Body)
}

func TestClientUpdateAndGet(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"7","title":"New","author":"A","year":2000,"genre":"action","status":"issued"}`)
	})

	p := BookPayload{Title: "New", Author: "A", Year: 2000, Genre: GenreAction, Status: StatusIssued}
	updated, err := c.Update(context.Background(), "7", p)
	require.NoError(t, err)
	assert.Equal(t, "7", updated.ID)

	got, err := c.GetByID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	assert.Equal(t, http.MethodPut, (*reqs)[0].Method)
	assert.Equal(t, "/books/7", (*reqs)[0].Path)
	assert.Equal(t, http.MethodGet, (*reqs)[1].Method)
	assert.Equal(t, "/books/7", (*reqs)[1].Path)
}

func TestClientDelete(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "42"))
	assert.Equal(t, http.MethodDelete, (*reqs)[0].Method)
	assert.Equal(t, "/books/42", (*reqs)[0].Path)
}

func TestClientDeleteIgnoresBody(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"42"}`)
	})
	assert.NoError(t, c.Delete(context.Background(), "42"))
}

func TestClientNon2xxIsFetchError(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, status, `{"message":"nope"}`)
			})

			_, err := c.GetByID(context.Background(), "1")
			var fe *FetchError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "fetch book", fe.Op)
			assert.Equal(t, status, fe.StatusCode)
			assert.Equal(t, status == http.StatusNotFound, fe.NotFound())
			assert.True(t, IsFetchError(err))
		})
	}
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).ListAll(context.Background())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "fetch books", fe.Op)
	assert.Zero(t, fe.StatusCode)
	assert.Error(t, fe.Unwrap())
}

func TestClientMalformedJSON(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":`)
	})
	_, err := c.GetByID(context.Background(), "1")
	assert.True(t, IsFetchError(err))
}

func TestClientEmptyBody(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	_, err := c.Create(context.Background(), BookPayload{Title: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response body")
}

func TestClientHonoursContext(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.ListAll(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClientEscapesID(t *testing.T) {
	c, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Delete(context.Background(), "a/b"))
	assert.Equal(t, "/books/a%2Fb", (*reqs)[0].Path)
}

func TestClientWithHTTPClient(t *testing.T) {
	called := false
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		called = true
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[]`)),
			Header:     make(http.Header),
		}, nil
	})}
	c := NewClient("http://catalog.invalid/books", WithHTTPClient(hc))
	assert.Equal(t, "http://catalog.invalid/books", c.BaseURL())

	books, err := c.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, books)
	assert.True(t, called)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

