package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"

	"github.com/OmerTuregun/product-catalog/internal/console/catalogapi"
	"github.com/OmerTuregun/product-catalog/internal/console/config"
	"github.com/OmerTuregun/product-catalog/internal/console/httpserver"
	"github.com/OmerTuregun/product-catalog/internal/console/observability"
	appsession "github.com/OmerTuregun/product-catalog/internal/console/session"
	catalogtpl "github.com/OmerTuregun/product-catalog/internal/console/templates/catalog"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("console stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	metrics := observability.NewMetrics()

	catalog, err := buildCatalog(cfg, metrics, logger)
	if err != nil {
		return err
	}
	sessions, err := buildSessions(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := httpserver.New(httpserver.Config{
		Address:          cfg.Server.Address,
		BasePath:         cfg.Server.BasePath,
		Environment:      cfg.Server.Environment,
		Production:       cfg.IsProduction(),
		Catalog:          catalog,
		Sessions:         sessions,
		CSRFCookieName:   cfg.CSRF.CookieName,
		CSRFCookieSecure: cfg.CSRF.Secure,
		CSRFHeaderName:   cfg.CSRF.HeaderName,
		Display: catalogtpl.Display{
			CurrencySymbol: cfg.Display.CurrencySymbol,
			Locale:         helpers.ParseLocale(cfg.Display.Locale),
			Placeholder:    cfg.Display.PlaceholderImage,
		},
		UploadMaxBytes: cfg.Limits.UploadMaxBytes,
		LoginPerMinute: cfg.Limits.LoginPerMinute,
		Logger:         logger,
		Metrics:        metrics,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		HandlerTimeout: cfg.Server.HandlerLimit,
	})
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("console listening",
		zap.String("addr", cfg.Server.Address),
		zap.String("base_path", cfg.Server.BasePath),
		zap.String("environment", cfg.Server.Environment),
	)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("console stopped")
	return nil
}

func buildCatalog(cfg *config.Config, metrics *observability.Metrics, logger *zap.Logger) (catalogapi.Service, error) {
	if cfg.UsesStaticBackend() {
		logger.Warn("CATALOG_API_BASE_URL not set; using in-memory catalog",
			zap.String("admin", cfg.Backend.SeedAdmin),
			zap.Int("categories", len(cfg.Backend.SeedCategories)),
		)
		return catalogapi.NewStaticService(catalogapi.StaticConfig{
			AdminUsername: cfg.Backend.SeedAdmin,
			AdminPassword: cfg.Backend.SeedPassword,
			Categories:    cfg.Backend.SeedCategories,
		}), nil
	}

	svc, err := catalogapi.NewHTTPService(
		cfg.Backend.BaseURL,
		catalogapi.NewHTTPClient(cfg.Backend.Timeout),
		catalogapi.WithObserver(metrics),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("catalog backend configured", zap.String("base_url", cfg.Backend.BaseURL))
	return svc, nil
}

func buildSessions(cfg *config.Config, logger *zap.Logger) (*appsession.Manager, error) {
	hashKey, blockKey := cfg.SessionKeys()
	if len(hashKey) == 0 {
		// Only reachable outside production; sessions do not survive a restart.
		logger.Warn("SESSION_HASH_KEY not set; generating ephemeral session keys")
		hashKey = securecookie.GenerateRandomKey(32)
		if len(blockKey) == 0 {
			blockKey = securecookie.GenerateRandomKey(32)
		}
		if hashKey == nil || blockKey == nil {
			return nil, errors.New("generate session keys")
		}
	}

	return appsession.NewManager(appsession.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookieSecure: cfg.Session.Secure,
		IdleTimeout:  cfg.Session.IdleTimeout,
		Lifetime:     cfg.Session.Lifetime,
	})
}
