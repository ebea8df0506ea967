package auth

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// UserContext is the authenticated principal attached to each request.
// BranchID/GroupID are empty for admins.
type UserContext struct {
	UserID   string
	Role     string
	BranchID string
	GroupID  string
}
