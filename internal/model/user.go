package model

// UserRole is carried in the bearer token; users themselves live in the
// identity service.
type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

func (r UserRole) IsAdmin() bool {
	return r == Admin
}
