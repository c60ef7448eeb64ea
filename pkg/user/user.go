package user

// Role determines booking limits (e.g. students are capped at shorter meetings).
type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
)

type User struct {
	Id          int
	Uid         string
	DisplayName string
	Role        Role
}
