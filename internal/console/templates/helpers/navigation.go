package helpers

import (
	"context"
	"strings"

	"github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
)

// BasePath returns the configured console base path.
func BasePath(ctx context.Context) string {
	return normalizeRoute(middleware.BasePathFromContext(ctx))
}

// JoinBase prefixes suffix with the console base path.
func JoinBase(basePath, suffix string) string {
	base := normalizeRoute(basePath)
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	if base == "/" {
		return suffix
	}
	return base + suffix
}

func normalizeRoute(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
