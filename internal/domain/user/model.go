package user

import (
	"strings"

	"github.com/google/uuid"
	"github.com/hengadev/errsx"
)

// User is one document in the users collection. PasswordHash is a bcrypt
// hash; handlers respond with a Profile so it never reaches a client.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
}

// Profile is the public view of a user returned after login.
type Profile struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u *User) Profile() Profile {
	return Profile{Email: u.Email, Role: u.Role}
}

// LoginRequest is the body accepted by POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs errsx.Map
	r.Email = normalizeEmail(r.Email)
	if r.Email == "" {
		errs.Set("email", "email is required")
	}
	if r.Password == "" {
		errs.Set("password", "password is required")
	}
	return errs.AsError()
}

// ProvisionRequest describes a user created from the command line.
type ProvisionRequest struct {
	Email    string
	Password string
	Role     string
}

var roles = map[string]bool{
	"admin":     true,
	"physician": true,
	"nurse":     true,
	"staff":     true,
}

func (r *ProvisionRequest) Validate() error {
	var errs errsx.Map
	r.Email = normalizeEmail(r.Email)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		errs.Set("email", "a valid email is required")
	}
	if len(r.Password) < 8 {
		errs.Set("password", "password must be at least 8 characters")
	}
	if len(r.Password) > 72 {
		errs.Set("password", "password must be at most 72 bytes")
	}
	if !roles[r.Role] {
		errs.Set("role", "role must be one of admin, physician, nurse, staff")
	}
	return errs.AsError()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
