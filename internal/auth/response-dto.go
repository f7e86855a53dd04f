package auth

import (
	"time"

	"wanderly/internal/users"

	"github.com/google/uuid"
)

// AuthResponse is returned by register and login; the token fields sit next
// to the user object.
type AuthResponse struct {
	User UserResponse `json:"user"`
	TokenPair
}

// UserResponse never carries the password hash
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Role      users.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

func toUserResponse(u *users.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
