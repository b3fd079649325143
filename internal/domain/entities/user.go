package entities

import "time"

// Role of a registered user
const (
	RoleHospitalAdmin = "hospital_admin"
)

// User is a hospital staff account. One admin account is allowed per
// hospital; login is by hospital code, not email.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Role         string    `json:"role" db:"role"`
	HospitalID   string    `json:"hospital_id" db:"hospital_id"`
	HospitalCode string    `json:"hospital_code" db:"hospital_code"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	LastLogin    time.Time `json:"last_login,omitempty" db:"last_login"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
