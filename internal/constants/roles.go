package constants

const (
	Admin   = "admin"
	Advisor = "advisor"
	User    = "user"
)

// ValidRoles is the set of allowed values for the Users.role column.
var ValidRoles = []string{User, Advisor, Admin}

func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
