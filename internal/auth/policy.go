// Package auth holds the caller identity passed explicitly into every
// service call, the authorization policy evaluated against it, and the
// password/token primitives used to establish it.
package auth

import "slices"

// Profile names, mirrored from model so this package stays dependency free.
const (
	PerfilRoot  = "ROOT"
	PerfilAdmin = "ADMIN"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID   uint
	Username string
	Perfis   []string
}

func (c *Caller) HasPerfil(perfil string) bool {
	return c != nil && slices.Contains(c.Perfis, perfil)
}

// IsAdmin is true for ADMIN and for ROOT, which outranks it.
func (c *Caller) IsAdmin() bool {
	return c.HasPerfil(PerfilAdmin) || c.HasPerfil(PerfilRoot)
}

func (c *Caller) IsSelf(userID uint) bool {
	return c != nil && c.UserID == userID
}

type Action int

const (
	// ReadUser reads a user record.
	ReadUser Action = iota + 1
	// CreateUser registers a new account.
	CreateUser
	// UpdateUser changes email/password of a user.
	UpdateUser
	// ManageUser changes profiles and the active flag.
	ManageUser
	// DeleteUser removes an account. ROOT accounts cannot be deleted.
	DeleteUser
	// UseDrawer reads, opens or closes the drawer of a user.
	UseDrawer
)

// Target describes the user an action is applied to.
type Target struct {
	UserID uint
	Perfis []string
}

// Can reports whether caller may perform action on target.
// A nil caller can do nothing.
func Can(caller *Caller, action Action, target Target) bool {
	if caller == nil {
		return false
	}
	self := caller.IsSelf(target.UserID)
	admin := caller.IsAdmin()

	switch action {
	case ReadUser, UseDrawer:
		return self || admin
	case CreateUser, ManageUser:
		return admin
	case DeleteUser:
		return admin && !slices.Contains(target.Perfis, PerfilRoot)
	case UpdateUser:
		if slices.Contains(target.Perfis, PerfilRoot) && !self {
			return false
		}
		return self || admin
	}
	return false
}
