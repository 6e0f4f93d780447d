package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/language"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	"github.com/OmerTuregun/product-catalog/internal/console/httpserver"
	"github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	appsession "github.com/OmerTuregun/product-catalog/internal/console/session"
	catalogtpl "github.com/OmerTuregun/product-catalog/internal/console/templates/catalog"
)

// Seeded accounts available on every test server.
const (
	AdminUsername = "admin"
	AdminPassword = "admin-pass"
	UserUsername  = "viewer"
	UserPassword  = "viewer-pass"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithAuthenticator overrides the authenticator used by the console.
func WithAuthenticator(auth middleware.Authenticator) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Authenticator = auth
	}
}

// WithBasePath sets a custom base path for the console routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithCatalog wires a custom catalog service implementation.
func WithCatalog(service catalogapi.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Catalog = service
	}
}

// WithMetrics enables the Prometheus collectors.
func WithMetrics(metrics *observability.Metrics) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Metrics = metrics
	}
}

// NewStaticCatalog returns an in-memory catalog with the seeded test accounts.
func NewStaticCatalog(categories ...string) *catalogapi.StaticService {
	svc := catalogapi.NewStaticService(catalogapi.StaticConfig{
		AdminUsername: AdminUsername,
		AdminPassword: AdminPassword,
		Categories:    categories,
	})
	svc.AddUser(UserUsername, UserPassword, catalogapi.RoleUser)
	return svc
}

// NewServer constructs an httptest server running the console HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	sessions, err := appsession.NewManager(appsession.Config{
		CookieName:  "catalog_session",
		HashKey:     []byte("0123456789abcdef0123456789abcdef"),
		BlockKey:    []byte("fedcba9876543210fedcba9876543210"),
		IdleTimeout: time.Hour,
		Lifetime:    2 * time.Hour,
	})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	cfg := httpserver.Config{
		Address:        ":0",
		BasePath:       "/",
		Environment:    "test",
		Catalog:        NewStaticCatalog(),
		Sessions:       sessions,
		CSRFCookieName: "catalog_csrf",
		CSRFHeaderName: "X-CSRF-Token",
		Display:        catalogtpl.Display{CurrencySymbol: "₺", Locale: language.English},
		UploadMaxBytes: 1 << 20,
		LoginPerMinute: 1000,
		Logger:         zaptest.NewLogger(t),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("httpserver: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
