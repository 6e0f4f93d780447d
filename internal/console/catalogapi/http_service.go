package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/OmerTuregun/product-catalog/internal/console/catalogapi")

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Observer records the outcome of backend calls.
type Observer interface {
	ObserveBackend(operation string, started time.Time, err error)
}

// Option customises an HTTPService.
type Option func(*HTTPService)

// WithObserver attaches a metrics observer.
func WithObserver(o Observer) Option {
	return func(s *HTTPService) {
		s.observer = o
	}
}

// HTTPService implements Service against the catalog REST API.
type HTTPService struct {
	base     *url.URL
	client   HTTPClient
	observer Observer
}

var _ Service = (*HTTPService)(nil)

// NewHTTPService constructs a Service talking to the backend at baseURL.
func NewHTTPService(baseURL string, client HTTPClient, opts ...Option) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("catalogapi: base URL is required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("catalogapi: parse base URL: %w", err)
	}
	if client == nil {
		client = NewHTTPClient(30 * time.Second)
	}
	svc := &HTTPService{base: parsed, client: client}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// NewHTTPClient returns a client that never follows redirects. The backend
// answers unauthenticated calls with a redirect to its login page, which must
// surface as an error rather than an HTML body.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// BaseURL returns the resolved backend root.
func (s *HTTPService) BaseURL() *url.URL {
	copied := *s.base
	return &copied
}

type credentialsPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the backend and returns its session cookies.
func (s *HTTPService) Login(ctx context.Context, username, password string) (creds Credentials, err error) {
	ctx, done := s.observe(ctx, "auth.login")
	defer func() { done(err) }()

	req, err := s.newJSONRequest(ctx, http.MethodPost, "/api/auth/login", credentialsPayload{Username: username, Password: password}, "")
	if err != nil {
		return "", err
	}
	resp, err := s.do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", s.errorFromResponse(resp)
	}
	creds = cookieHeader(resp.Cookies())
	if creds.Empty() {
		return "", errors.New("catalogapi: login response carried no session cookie")
	}
	return creds, nil
}

// Register creates a regular user account.
func (s *HTTPService) Register(ctx context.Context, username, password string) (err error) {
	ctx, done := s.observe(ctx, "auth.register")
	defer func() { done(err) }()

	req, err := s.newJSONRequest(ctx, http.MethodPost, "/api/auth/register", credentialsPayload{Username: username, Password: password}, "")
	if err != nil {
		return err
	}
	return s.expect(req, nil, http.StatusCreated, http.StatusOK)
}

// Logout ends the backend session.
func (s *HTTPService) Logout(ctx context.Context, creds Credentials) (err error) {
	ctx, done := s.observe(ctx, "auth.logout")
	defer func() { done(err) }()

	req, err := s.newRequest(ctx, http.MethodPost, "/api/auth/logout", nil, creds)
	if err != nil {
		return err
	}
	return s.expect(req, nil, http.StatusOK)
}

// Me resolves the identity bound to creds.
func (s *HTTPService) Me(ctx context.Context, creds Credentials) (identity *Identity, err error) {
	ctx, done := s.observe(ctx, "auth.me")
	defer func() { done(err) }()

	req, err := s.newRequest(ctx, http.MethodGet, "/api/auth/me", nil, creds)
	if err != nil {
		return nil, err
	}
	var payload Identity
	if err := s.expect(req, &payload, http.StatusOK); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Categories lists all categories ordered by name.
func (s *HTTPService) Categories(ctx context.Context, creds Credentials) (categories []Category, err error) {
	ctx, done := s.observe(ctx, "categories.list")
	defer func() { done(err) }()

	req, err := s.newRequest(ctx, http.MethodGet, "/api/categories", nil, creds)
	if err != nil {
		return nil, err
	}
	if err := s.expect(req, &categories, http.StatusOK); err != nil {
		return nil, err
	}
	return categories, nil
}

type categoryPayload struct {
	Name string `json:"name"`
}

// CreateCategory adds a category.
func (s *HTTPService) CreateCategory(ctx context.Context, creds Credentials, name string) (category *Category, err error) {
	ctx, done := s.observe(ctx, "categories.create")
	defer func() { done(err) }()

	req, err := s.newJSONRequest(ctx, http.MethodPost, "/api/categories", categoryPayload{Name: strings.TrimSpace(name)}, creds)
	if err != nil {
		return nil, err
	}
	var payload Category
	if err := s.expect(req, &payload, http.StatusCreated, http.StatusOK); err != nil {
		return nil, err
	}
	return &payload, nil
}

// RenameCategory changes a category name.
func (s *HTTPService) RenameCategory(ctx context.Context, creds Credentials, id int64, name string) (category *Category, err error) {
	ctx, done := s.observe(ctx, "categories.rename")
	defer func() { done(err) }()

	req, err := s.newJSONRequest(ctx, http.MethodPut, categoryPath(id), categoryPayload{Name: strings.TrimSpace(name)}, creds)
	if err != nil {
		return nil, err
	}
	var payload Category
	if err := s.expect(req, &payload, http.StatusOK); err != nil {
		return nil, err
	}
	return &payload, nil
}

// DeleteCategory removes a category.
func (s *HTTPService) DeleteCategory(ctx context.Context, creds Credentials, id int64) (err error) {
	ctx, done := s.observe(ctx, "categories.delete")
	defer func() { done(err) }()

	req, err := s.newRequest(ctx, http.MethodDelete, categoryPath(id), nil, creds)
	if err != nil {
		return err
	}
	return s.expect(req, nil, http.StatusOK, http.StatusNoContent)
}

// Products lists products matching filter.
func (s *HTTPService) Products(ctx context.Context, creds Credentials, filter ProductFilter) (products []ProductSummary, err error) {
	ctx, done := s.observe(ctx, "products.list")
	defer func() { done(err) }()

	endpoint := "/api/products"
	if encoded := filter.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, nil, creds)
	if err != nil {
		return nil, err
	}
	if err := s.expect(req, &products, http.StatusOK); err != nil {
		return nil, err
	}
	return products, nil
}

// Product fetches one product with description and images.
func (s *HTTPService) Product(ctx context.Context, creds Credentials, id int64) (detail *ProductDetail, err error) {
	ctx, done := s.observe(ctx, "products.get")
	defer func() { done(err) }()

	req, err := s.newRequest(ctx, http.MethodGet, productPath(id), nil, creds)
	if err != nil {
		return nil, err
	}
	var payload ProductDetail
	if err := s.expect(req, &payload, http.StatusOK); err != nil {
		return nil, err
	}
	return &payload, nil
}

type createdPayload struct {
	ID int64 `json:"id"`
}

// CreateProduct submits a new product and returns its id.
func (s *HTTPService) CreateProduct(ctx context.Context, creds Credentials, input ProductInput) (id int64, err error) {
	ctx, done := s.observe(ctx, "products.create")
	defer func() { done(err) }()

	req, err := s.newMultipartRequest(ctx, http.MethodPost, "/api/products", input, creds)
	if err != nil {
		return 0, err
	}
	var payload createdPayload
	if err := s.expect(req, &payload, http.StatusCreated, http.StatusOK); err != nil {
		return 0, err
	}
	return payload.ID, nil
}

// UpdateProduct replaces product fields and appends any new images.
func (s *HTTPService) UpdateProduct(ctx context.Context, creds Credentials, id int64, input ProductInput) (err error) {
	ctx, done := s.observe(ctx, "products.update")
	defer func() { done(err) }()

	req, err := s.newMultipartRequest(ctx, http.MethodPut, productPath(id), input, creds)
	if err != nil {
		return err
	}
	return s.expect(req, nil, http.StatusOK)
}

// DeleteProduct removes a product.
func (s *HTTPService) DeleteProduct(ctx context.Context, creds Credentials, id int64) (err error) {
	ctx, done := s.observe(ctx, "products.delete")
	defer func() { done(err) }()

	req, err := s.newRequest(ctx, http.MethodDelete, productPath(id), nil, creds)
	if err != nil {
		return err
	}
	return s.expect(req, nil, http.StatusOK, http.StatusNoContent)
}

func categoryPath(id int64) string {
	return "/api/categories/" + strconv.FormatInt(id, 10)
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

func (s *HTTPService) observe(ctx context.Context, operation string) (context.Context, func(error)) {
	ctx, span := tracer.Start(ctx, "catalogapi."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("catalog.operation", operation)),
	)
	started := time.Now()
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if s.observer != nil {
			s.observer.ObserveBackend(operation, started, err)
		}
	}
}

// expect executes req, checks the status against accepted and decodes the
// body into out when out is non-nil.
func (s *HTTPService) expect(req *http.Request, out any, accepted ...int) error {
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !statusIn(resp.StatusCode, accepted) {
		return s.errorFromResponse(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalogapi: decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalogapi: request failed: %w", err)
	}
	trace.SpanFromContext(req.Context()).SetAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.Int("http.response.status_code", resp.StatusCode),
	)
	return resp, nil
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, body io.Reader, creds Credentials) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint), body)
	if err != nil {
		return nil, fmt.Errorf("catalogapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if !creds.Empty() {
		req.Header.Set("Cookie", string(creds))
	}
	return req, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any, creds Credentials) (*http.Request, error) {
	var buf bytes.Buffer
	if payload != nil {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("catalogapi: encode payload: %w", err)
		}
	}
	req, err := s.newRequest(ctx, method, endpoint, &buf, creds)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) newMultipartRequest(ctx context.Context, method, endpoint string, input ProductInput, creds Credentials) (*http.Request, error) {
	var buf bytes.Buffer
	contentType, err := input.WriteMultipart(&buf)
	if err != nil {
		return nil, err
	}
	req, err := s.newRequest(ctx, method, endpoint, &buf, creds)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

func (s *HTTPService) resolve(endpoint string) string {
	if endpoint == "" {
		return s.base.String()
	}
	ref, err := url.Parse(strings.TrimPrefix(endpoint, "/"))
	if err != nil {
		return s.base.String()
	}
	return s.base.ResolveReference(ref).String()
}

func (s *HTTPService) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()

	var payload struct {
		Error string `json:"error"`
	}
	message := GenericErrorMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
			message = strings.TrimSpace(payload.Error)
		}
	}
	return &APIError{Status: resp.StatusCode, Message: message}
}

func statusIn(status int, accepted []int) bool {
	for _, code := range accepted {
		if status == code {
			return true
		}
	}
	return false
}

func cookieHeader(cookies []*http.Cookie) Credentials {
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" || c.MaxAge < 0 {
			continue
		}
		parts = append(parts, c.Name+"="+c.Value)
	}
	return Credentials(strings.Join(parts, "; "))
}
