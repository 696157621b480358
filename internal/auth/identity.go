package auth

import "github.com/gofiber/fiber/v2"

// Identity is the resolved caller for a request. The zero value is the
// anonymous caller; an authenticated caller carries the user id and role.
// It is passed explicitly into permission checks rather than read from
// ambient state.
type Identity struct {
	UserID string
	Role   string
}

func Anonymous() Identity {
	return Identity{}
}

func Authenticated(userID, role string) Identity {
	return Identity{UserID: userID, Role: role}
}

func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

const identityLocal = "identity"

// IdentityFrom returns the Identity stored by the auth middleware, or the
// anonymous identity when no middleware ran or no token was presented.
func IdentityFrom(c *fiber.Ctx) Identity {
	if id, ok := c.Locals(identityLocal).(Identity); ok {
		return id
	}
	return Anonymous()
}
