package testutil

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
)

// Client drives the console like a browser: it keeps cookies, never follows
// redirects and can send htmx requests carrying the CSRF header.
type Client struct {
	t    testing.TB
	base string
	http *http.Client
}

// NewClient returns a client bound to the test server URL.
func NewClient(t testing.TB, baseURL string) *Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &Client{
		t:    t,
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Login signs in through the login form and fails the test unless redirected to the catalog.
func (c *Client) Login(username, password string) {
	c.t.Helper()
	c.Get("/login").Body.Close()

	form := url.Values{
		"csrf_token": {c.CSRFToken()},
		"username":   {username},
		"password":   {password},
	}
	req, err := http.NewRequest(http.MethodPost, c.base+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		c.t.Fatalf("login request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := c.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		c.t.Fatalf("login as %s: expected 303, got %d", username, resp.StatusCode)
	}
}

// CSRFToken returns the CSRF cookie issued to this client.
func (c *Client) CSRFToken() string {
	c.t.Helper()
	u, err := url.Parse(c.base + "/")
	if err != nil {
		c.t.Fatalf("parse base: %v", err)
	}
	for _, cookie := range c.http.Jar.Cookies(u) {
		if cookie.Name == "catalog_csrf" {
			return cookie.Value
		}
	}
	return ""
}

// Get issues a full page request.
func (c *Client) Get(path string) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	return c.Do(req)
}

// HTMX issues an htmx request with the CSRF header.
func (c *Client) HTMX(method, path string, body io.Reader, contentType string) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	req.Header.Set("HX-Request", "true")
	if token := c.CSRFToken(); token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return c.Do(req)
}

// Do sends req with the client's cookies.
func (c *Client) Do(req *http.Request) *http.Response {
	c.t.Helper()
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	return resp
}

// Upload is one file part of a multipart form.
type Upload struct {
	Filename string
	Content  []byte
}

// MultipartForm encodes fields and image uploads the way the product form does.
func MultipartForm(t testing.TB, fields map[string]string, uploads ...Upload) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, up := range uploads {
		part, err := mw.CreateFormFile("images", up.Filename)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(up.Content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// ReadBody drains and closes resp.Body.
func ReadBody(t testing.TB, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return body
}
