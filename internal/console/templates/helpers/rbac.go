package helpers

import (
	"context"

	"github.com/OmerTuregun/product-catalog/internal/console/httpserver/middleware"
	"github.com/OmerTuregun/product-catalog/internal/console/rbac"
)

// HasCapability reports whether the authenticated user possesses the capability.
func HasCapability(ctx context.Context, capability rbac.Capability) bool {
	user, ok := middleware.UserFromContext(ctx)
	if !ok {
		return false
	}
	return rbac.HasCapability(user.Role, capability)
}
