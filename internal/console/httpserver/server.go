package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"go.uber.org/zap"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	custommw "github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/httpserver/ui"
	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	"github.com/OmerTuregun/product-catalog/internal/console/rbac"
	"github.com/OmerTuregun/product-catalog/internal/console/templates"
	catalogtpl "github.com/OmerTuregun/product-catalog/internal/console/templates/catalog"
	"github.com/OmerTuregun/product-catalog/public"
)

// Config holds runtime options for the console HTTP server.
type Config struct {
	Address     string
	BasePath    string
	LoginPath   string
	Environment string
	Production  bool

	Catalog       catalogapi.Service
	Authenticator custommw.Authenticator
	Sessions      custommw.SessionStore

	CSRFCookieName   string
	CSRFCookiePath   string
	CSRFCookieSecure bool
	CSRFHeaderName   string

	Display        catalogtpl.Display
	UploadMaxBytes int64
	LoginPerMinute int

	Logger  *zap.Logger
	Metrics *observability.Metrics

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	HandlerTimeout time.Duration
}

// mediaSource is implemented by catalog services that can serve uploaded images.
type mediaSource interface {
	Media() http.Handler
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("httpserver: catalog service is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("httpserver: session store is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	views, err := templates.New()
	if err != nil {
		return nil, err
	}
	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("embed static: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLogger(logger))
	router.Use(observability.RequestLogger)
	router.Use(cfg.Metrics.Middleware)
	router.Use(chimw.Recoverer)
	router.Use(chimw.Timeout(durationOr(cfg.HandlerTimeout, 60*time.Second)))
	router.Use(chimw.Compress(5))
	router.Use(secureHeaders(cfg.Production))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", cfg.Metrics.Handler())
	router.Handle("/public/static/*", http.StripPrefix("/public/static/", http.FileServer(http.FS(staticContent))))
	if media, ok := cfg.Catalog.(mediaSource); ok {
		router.Handle("/uploads/*", media.Media())
	}

	basePath := normalizeBasePath(cfg.BasePath)
	loginPath := resolveLoginPath(basePath, cfg.LoginPath)

	authenticator := cfg.Authenticator
	if authenticator == nil {
		authenticator = custommw.NewBackendAuthenticator(cfg.Catalog)
	}

	csrfCfg := custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		CookiePath: firstNonEmpty(cfg.CSRFCookiePath, basePath),
		HeaderName: cfg.CSRFHeaderName,
		Secure:     cfg.CSRFCookieSecure,
	}

	handlers := ui.NewHandlers(ui.Dependencies{
		Catalog:        cfg.Catalog,
		Views:          views,
		Display:        cfg.Display,
		CSRFHeader:     cfg.CSRFHeaderName,
		UploadMaxBytes: cfg.UploadMaxBytes,
	})

	mountConsoleRoutes(router, basePath, routeOptions{
		Authenticator:  authenticator,
		Auth:           newAuthHandlers(cfg.Catalog, views, basePath, loginPath, cfg.CSRFHeaderName),
		UI:             handlers,
		Sessions:       cfg.Sessions,
		LoginPath:      loginPath,
		Environment:    cfg.Environment,
		CSRF:           csrfCfg,
		LoginPerMinute: cfg.LoginPerMinute,
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  durationOr(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: durationOr(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  durationOr(cfg.IdleTimeout, 60*time.Second),
	}, nil
}

type routeOptions struct {
	Authenticator  custommw.Authenticator
	Auth           *authHandlers
	UI             *ui.Handlers
	Sessions       custommw.SessionStore
	LoginPath      string
	Environment    string
	CSRF           custommw.CSRFConfig
	LoginPerMinute int
}

func mountConsoleRoutes(router chi.Router, base string, opts routeOptions) {
	perMinute := opts.LoginPerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	loginLimiter := httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Too many attempts. Please wait a minute and try again.", http.StatusTooManyRequests)
		}),
	)

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.Session(opts.Sessions))
		r.Use(custommw.HTMX())
		r.Use(custommw.RequestInfoMiddleware(base, opts.Environment))
		r.Use(custommw.NoStore())
		r.Use(custommw.CSRF(opts.CSRF))

		r.Get("/login", opts.Auth.LoginForm)
		r.With(loginLimiter).Post("/login", opts.Auth.LoginSubmit)
		r.With(loginLimiter).Post("/register", opts.Auth.RegisterSubmit)
		r.Post("/logout", opts.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(custommw.Auth(opts.Authenticator, opts.LoginPath))

			r.Get("/", opts.UI.CatalogPage)
			RegisterFragment(r, "/products/grid", opts.UI.ProductGrid)
			RegisterFragment(r, "/products/{productID}/details", opts.UI.ProductDetail)

			r.Group(func(r chi.Router) {
				r.Use(custommw.RequireCapability(rbac.CapCatalogManage))
				RegisterFragment(r, "/products/new", opts.UI.NewProductForm)
				RegisterFragment(r, "/products/{productID}/edit", opts.UI.EditProductForm)
				RegisterFragment(r, "/products/{productID}/delete", opts.UI.ConfirmDeleteProduct)
				r.Post("/products", opts.UI.CreateProduct)
				r.Put("/products/{productID}", opts.UI.UpdateProduct)
				r.Delete("/products/{productID}", opts.UI.DeleteProduct)
			})

			r.Group(func(r chi.Router) {
				r.Use(custommw.RequireCapability(rbac.CapCategoriesManage))
				RegisterFragment(r, "/categories", opts.UI.CategoryPanel)
				r.Post("/categories", opts.UI.CreateCategory)
				r.Put("/categories/{categoryID}", opts.UI.RenameCategory)
				r.Delete("/categories/{categoryID}", opts.UI.DeleteCategory)
			})
		})
	})
}

func secureHeaders(production bool) func(http.Handler) http.Handler {
	sm := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sm.Process(w, r); err != nil {
				observability.FromContext(r.Context()).Warn("secure headers blocked request", zap.Error(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func resolveLoginPath(base string, override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	if base == "/" {
		return "/login"
	}
	return base + "/login"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func durationOr(value, fallback time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return fallback
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
