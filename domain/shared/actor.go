package shared

// Role is the caller's role as asserted by the identity service.
type Role string

const (
	RoleCustomer        Role = "CUSTOMER"
	RoleRestaurantOwner Role = "RESTAURANT_OWNER"
	RoleAdmin           Role = "ADMIN"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanActFor reports whether the actor may act on userID's resources.
func (a Actor) CanActFor(userID int64) bool {
	return a.UserID == userID || a.IsAdmin()
}
