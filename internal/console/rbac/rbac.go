package rbac

import (
	"strings"
)

// Role is the access tier reported by the catalog backend.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Capability represents a discrete permission checked in handlers and templates.
type Capability string

const (
	CapCatalogView      Capability = "catalog.view"
	CapCatalogManage    Capability = "catalog.manage"
	CapCategoriesManage Capability = "categories.manage"
)

// capabilityRoles maps each capability to the roles permitted to access it.
var capabilityRoles = map[Capability][]Role{
	CapCatalogView:      {RoleAdmin, RoleUser},
	CapCatalogManage:    {RoleAdmin},
	CapCategoriesManage: {RoleAdmin},
}

// NormaliseRole converts a raw role string into a canonical Role. Unknown
// and empty values collapse to RoleUser so they never gain admin rights.
func NormaliseRole(raw string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// HasCapability reports whether the role grants the capability.
func HasCapability(role string, capability Capability) bool {
	if capability == "" {
		return true
	}
	normalised := NormaliseRole(role)
	for _, allowed := range capabilityRoles[capability] {
		if allowed == normalised {
			return true
		}
	}
	return false
}

// CapabilitiesForRole enumerates the capabilities accessible to role.
func CapabilitiesForRole(role string) map[Capability]bool {
	caps := make(map[Capability]bool, len(capabilityRoles))
	for capability := range capabilityRoles {
		if HasCapability(role, capability) {
			caps[capability] = true
		}
	}
	return caps
}
