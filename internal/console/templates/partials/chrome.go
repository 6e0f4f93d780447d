package partials

import (
	"context"
	"strings"

	"github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/templates/helpers"
)

// Chrome is the layout state shared by every full page.
type Chrome struct {
	Title       string
	BasePath    string
	CSRFToken   string
	CSRFHeader  string
	Environment string
	Username    string
	LogoutURL   string
}

// BuildChrome collects layout state from the request context.
func BuildChrome(ctx context.Context, title, csrfHeader string) Chrome {
	if strings.TrimSpace(csrfHeader) == "" {
		csrfHeader = "X-CSRF-Token"
	}
	base := helpers.BasePath(ctx)
	chrome := Chrome{
		Title:       title,
		BasePath:    base,
		CSRFToken:   middleware.CSRFTokenFromContext(ctx),
		CSRFHeader:  csrfHeader,
		Environment: middleware.EnvironmentFromContext(ctx),
		LogoutURL:   helpers.JoinBase(base, "/logout"),
	}
	if user, ok := middleware.UserFromContext(ctx); ok {
		chrome.Username = user.Username
	}
	return chrome
}

// EnvironmentBadge is the short label shown outside production.
func (c Chrome) EnvironmentBadge() string {
	switch strings.ToLower(strings.TrimSpace(c.Environment)) {
	case "", "prod", "production":
		return ""
	case "staging", "stg":
		return "STG"
	case "development", "dev", "local":
		return "DEV"
	default:
		return strings.ToUpper(c.Environment)
	}
}
