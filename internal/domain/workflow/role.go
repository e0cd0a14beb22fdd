package workflow

// Role represents an actor's role within a company
type Role string

const (
	RoleRequester Role = "requester"
	RolePM        Role = "pm"
	RolePresident Role = "president"
	RolePurchaser Role = "purchaser"
	RoleAdmin     Role = "admin"
)

var validRoles = map[Role]bool{
	RoleRequester: true,
	RolePM:        true,
	RolePresident: true,
	RolePurchaser: true,
	RoleAdmin:     true,
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}
