package rbac

const (
	AdminRole = "admin"
	Wildcard  = "*"
)

// HasAccess implements the capability rule the permission fields on document
// types are defined against: admin always passes, an empty/absent role list
// means any authenticated role, a wildcard entry means any role, otherwise
// plain membership.
func HasAccess(role string, allowed []string) bool {
	if role == AdminRole {
		return true
	}
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == Wildcard {
			return true
		}
	}
	for _, a := range allowed {
		if a == role {
			return true
		}
	}
	return false
}

// HasAnyAccess reports whether any of the caller's roles passes HasAccess.
func HasAnyAccess(roles []string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range roles {
		if HasAccess(r, allowed) {
			return true
		}
	}
	return false
}
