package users

import "time"

const (
	RoleSeeker  = "seeker"
	RoleCompany = "company"
	RoleAdmin   = "admin"
)

type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Role       string    `json:"role"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NormalizeRole maps arbitrary input to a known role, defaulting to seeker.
func NormalizeRole(role string) string {
	switch role {
	case RoleCompany:
		return RoleCompany
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleSeeker
	}
}
