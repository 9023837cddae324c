package domain

import "time"

// Roles disponibles para un usuario.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID                  string    `json:"id"`
	FullName            string    `json:"full_name"`
	Email               string    `json:"email"`
	PasswordHash        string    `json:"-"`
	Role                string    `json:"role"`
	IsEmailVerified     bool      `json:"is_email_verified"`
	ProfileImageURL     string    `json:"profile_image_url"`
	ProfileImagePublicID string   `json:"-"`
	AuthProvider        string    `json:"auth_provider,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// DefaultProfileImage es la imagen asignada a cuentas sin foto propia.
const DefaultProfileImage = "/images/default.png"

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
