// Package authz holds the ownership and visibility rules shared by every
// manager in the service layer.
//
// The rules are pure: they look only at the actor and at the owner and
// visibility of a resource the caller has already loaded. Existence checks
// happen before any call into this package, so a missing resource is always
// reported as NOT_FOUND, never as FORBIDDEN.
package authz

import (
	"fmt"

	"github.com/sakif/codigoteca/internal/apperror"
	"github.com/sakif/codigoteca/internal/model"
)

// Role is the authorization level of an account.
type Role string

const (
	RoleUsuario Role = "usuario"
	RoleAdmin   Role = "admin"
)

// ParseRole converts a stored or submitted role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("authz: unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	return r == RoleUsuario || r == RoleAdmin
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   int64
	Role Role
}

// IsAdmin reports whether the actor may bypass ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor is the owner recorded on a resource.
func (a Actor) Owns(ownerID int64) bool {
	return a.ID == ownerID
}

// Action is the kind of access being requested.
type Action int

const (
	Read Action = iota
	Write
)

// Decision is the outcome of a rule evaluation.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// Resource describes what the rules need to know about an owned entity.
// An empty Visibility means the resource has no public form (Codigo).
type Resource struct {
	OwnerID    int64
	Visibility model.Visibility
}

// Decide evaluates the ownership rules.
//
//   - Write: owner or admin.
//   - Read of a public resource: everyone.
//   - Read of anything else: owner or admin.
func Decide(actor Actor, action Action, res Resource) Decision {
	if actor.IsAdmin() || actor.Owns(res.OwnerID) {
		return Allow
	}
	if action == Read && res.Visibility == model.VisibilityPublica {
		return Allow
	}
	return Deny
}

// Check is Decide with the Deny outcome turned into a FORBIDDEN error carrying
// message.
func Check(actor Actor, action Action, res Resource, message string) error {
	if Decide(actor, action, res) == Deny {
		return apperror.Forbidden(message)
	}
	return nil
}
