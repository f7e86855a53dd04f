package auth

import (
	"strings"

	"wanderly/internal/users"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RegisterRequest signs up a traveller or a vendor. Role is case-insensitive
// and defaults to USER.
type RegisterRequest struct {
	FirstName string `json:"first_name" validate:"required,min=2,max=100"`
	LastName  string `json:"last_name" validate:"required,min=2,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	Role      string `json:"role,omitempty" validate:"omitempty,max=10"`
}

func (r *RegisterRequest) role() (users.Role, bool) {
	if r.Role == "" {
		return users.RoleUser, true
	}
	requested := strings.ToUpper(strings.TrimSpace(r.Role))
	return users.Role(requested), users.IsSelfAssignable(requested)
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,nefield=CurrentPassword"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
