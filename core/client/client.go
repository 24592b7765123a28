// Copyright 2024 Edulab GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
//

/*
Package client provides access to the SIMS REST api.

The client either talks HTTP to a real backend, or directly to a mux router
without marshalling HTTP. The router mode is the tool of choice for unit
tests: the fake backend's router is plugged in and requests run in-process
through httptest recorders.

The backend is cookie-authenticated; the client keeps the session cookie
from the login response and replays it on every subsequent request, in both
modes.
*/
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

// Client provides access to the REST API.
type Client struct {
	router     *mux.Router
	httpClient *http.Client
	url        string
	ctx        context.Context

	defaultHeaders map[string]string
	jar            *cookieStore
}

// cookieStore is shared between derived clients so that the session cookie
// from a login survives WithContext-style chaining. Module activation fires
// several loads through the one shared client at once, and the backend may
// refresh the session cookie on any response, so access is serialized.
type cookieStore struct {
	mu      sync.Mutex
	cookies map[string]*http.Cookie
}

func (s *cookieStore) store(cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cookies {
		if c.MaxAge < 0 {
			delete(s.cookies, c.Name)
			continue
		}
		s.cookies[c.Name] = c
	}
}

func (s *cookieStore) apply(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cookies {
		r.AddCookie(c)
	}
}

func (s *cookieStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookies = map[string]*http.Cookie{}
}

// NewWithRouter creates a client that makes pseudo-REST requests to the
// backend through the mux router, without a network.
func NewWithRouter(router *mux.Router) Client {
	return Client{
		router:         router,
		defaultHeaders: map[string]string{},
		jar:            &cookieStore{cookies: map[string]*http.Cookie{}},
	}
}

// NewWithURL creates a client that makes REST requests to the backend at the
// given base URL.
func NewWithURL(url string) Client {
	return Client{
		url:            url,
		httpClient:     &http.Client{Timeout: 20 * time.Second},
		defaultHeaders: map[string]string{},
		jar:            &cookieStore{cookies: map[string]*http.Cookie{}},
	}
}

// WithHeader returns a new client with a default header added
func (c Client) WithHeader(key string, value string) Client {
	c.defaultHeaders[key] = value
	return c
}

// WithContext returns a new client with specific request context
func (c Client) WithContext(ctx context.Context) Client {
	c.ctx = ctx
	return c
}

// Context returns the client's base context.
func (c Client) Context() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// ClearSession drops the stored session cookie.
func (c Client) ClearSession() {
	c.jar.clear()
}

// RawGet gets the resource from path. Returns the http status code; any
// non-2xx response is turned into an *APIError carrying the server's error
// message.
//
// result can also be a raw *[]byte, or nil.
func (c Client) RawGet(ctx context.Context, path string, result interface{}) (int, error) {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// RawPost posts a resource to path. See RawGet for error semantics.
//
// body can also be a []byte; result can be a raw *[]byte or nil.
func (c Client) RawPost(ctx context.Context, path string, body interface{}, result interface{}) (int, error) {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// RawPut puts a resource to path. See RawGet for error semantics.
func (c Client) RawPut(ctx context.Context, path string, body interface{}, result interface{}) (int, error) {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// RawDelete deletes the resource at path. See RawGet for error semantics.
func (c Client) RawDelete(ctx context.Context, path string) (int, error) {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) (int, error) {
	var reqBody io.Reader
	if body != nil {
		j, ok := body.([]byte)
		if !ok {
			var err error
			j, err = json.Marshal(body)
			if err != nil {
				return http.StatusBadRequest, err
			}
		}
		reqBody = bytes.NewBuffer(j)
	}

	if ctx == nil {
		ctx = c.Context()
	}
	r, err := http.NewRequestWithContext(ctx, method, c.url+path, reqBody)
	if err != nil {
		return http.StatusBadRequest, err
	}
	for key, value := range c.defaultHeaders {
		r.Header.Add(key, value)
	}
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	c.jar.apply(r)

	var res *http.Response
	var resBody []byte
	if c.router != nil {
		rec := httptest.NewRecorder()
		c.router.ServeHTTP(rec, r)
		res = rec.Result()
		resBody = rec.Body.Bytes()
	} else {
		res, err = c.httpClient.Do(r)
		if err != nil {
			return http.StatusInternalServerError, err
		}
		defer res.Body.Close()
		resBody, _ = io.ReadAll(res.Body)
	}
	c.jar.store(res.Cookies())

	status := res.StatusCode
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return status, errorFromResponse(status, resBody)
	}
	if status == http.StatusNoContent {
		return status, nil
	}

	if resBody != nil && result != nil {
		if raw, ok := result.(*[]byte); ok {
			*raw = resBody
		} else {
			err = json.Unmarshal(resBody, result)
		}
	}
	return status, err
}

// listQuery builds the ?page=&search= query string used by all primary
// lists. Only pagination and the raw search text go to the server; client
// side filter and sort state never do.
func listQuery(page int, search string) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if search != "" {
		q.Set("search", search)
	}
	return "?" + q.Encode()
}
