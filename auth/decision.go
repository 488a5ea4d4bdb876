package auth

import "strings"

const EffectAllow = "Allow"

// GitPermissions are the caller's rights on the configured repository.
type GitPermissions struct {
	Push bool
	Pull bool
}

// UserContext is attached to a request once it has been authorized and is
// read by the batch handler. It never outlives the request.
type UserContext struct {
	GitPermissions
	Username string
}

// Resource is an endpoint a Decision grants access to.
type Resource struct {
	Method string
	Path   string
}

// Decision is a provider-neutral capability: the principal may invoke the
// listed resources, carrying Context to whatever handles them.
type Decision struct {
	Principal string
	Effect    string
	Resources []Resource
	Context   UserContext
}

// Allows reports whether the decision covers method on path.
func (d *Decision) Allows(method, path string) bool {
	if d == nil || d.Effect != EffectAllow {
		return false
	}

	for _, r := range d.Resources {
		if strings.EqualFold(r.Method, method) && r.Path == path {
			return true
		}
	}

	return false
}
