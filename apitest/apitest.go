// Package apitest provides test helpers that drive an http.Handler and
// decode jsonapi envelopes while keeping track of which keys were present.
package apitest

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	jsoniter "github.com/json-iterator/go"
)

// Client wraps an httptest.Server for convenient API testing.
type Client struct {
	Server *httptest.Server
}

// NewClient starts a test server for h.
func NewClient(t testing.TB, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return &Client{Server: srv}
}

// Response holds a decoded envelope.
type Response struct {
	Status  int
	Headers http.Header
	// Envelope is the decoded top-level object, nil when the body was empty
	// or not a JSON object.
	Envelope map[string]any
	Raw      []byte
}

// OK returns the envelope's ok flag.
func (r *Response) OK() bool {
	ok, _ := r.Envelope["ok"].(bool)
	return ok
}

// Message returns the envelope message and whether the key was present.
func (r *Response) Message() (string, bool) {
	v, ok := r.Envelope["message"]
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, true
}

// Body returns the envelope body and whether the key was present.
func (r *Response) Body() (map[string]any, bool) {
	v, ok := r.Envelope["body"]
	if !ok {
		return nil, false
	}
	m, _ := v.(map[string]any)
	return m, true
}

// Has reports whether the top-level envelope carries key.
func (r *Response) Has(key string) bool {
	_, ok := r.Envelope[key]
	return ok
}

// Get sends a GET request.
func (c *Client) Get(t testing.TB, path string, header ...http.Header) *Response {
	t.Helper()
	return c.Do(t, http.MethodGet, path, "", header...)
}

// Post sends a POST request with a raw body.
func (c *Client) Post(t testing.TB, path, body string, header ...http.Header) *Response {
	t.Helper()
	return c.Do(t, http.MethodPost, path, body, header...)
}

// Do sends a request to the test server.
func (c *Client) Do(t testing.TB, method, path, body string, header ...http.Header) *Response {
	t.Helper()

	req := NewRequest(t, method, c.Server.URL+path, body)
	for _, h := range header {
		for k, vs := range h {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("apitest: execute request: %v", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			t.Errorf("apitest: close body: %v", closeErr)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("apitest: read body: %v", err)
	}
	return decode(resp.StatusCode, resp.Header, raw)
}

// NewRequest builds a request with a JSON content type when body is set.
func NewRequest(t testing.TB, method, target, body string) *http.Request {
	t.Helper()

	var reqBody io.Reader
	if body != "" {
		reqBody = bytes.NewBufferString(body)
	}
	req, err := http.NewRequestWithContext(context.Background(), method, target, reqBody)
	if err != nil {
		t.Fatalf("apitest: create request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// Serve runs h in-process against r and decodes the recorded response.
func Serve(t testing.TB, h http.Handler, r *http.Request) *Response {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return decode(rec.Code, rec.Header(), rec.Body.Bytes())
}

func decode(status int, header http.Header, raw []byte) *Response {
	resp := &Response{
		Status:  status,
		Headers: header,
		Raw:     raw,
	}
	if len(raw) > 0 {
		var env map[string]any
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(raw, &env); err == nil {
			resp.Envelope = env
		}
	}
	return resp
}
