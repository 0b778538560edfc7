package models

import "time"

// User defines a platform staff account based on the 'users' table.
// Students and teachers do not have rows here; their accounts live in the
// external identity service.
type User struct {
	ID          int64      `json:"id" db:"id" example:"1"`                                    // Unique identifier for the user
	Email       string     `json:"email" db:"email" example:"admin@school.edu"`               // User's email address
	Password    string     `json:"-" db:"password"`                                           // User's hashed password (excluded from JSON)
	FirstName   string     `json:"firstName" db:"first_name" example:"Jane"`                  // User's first name
	LastName    string     `json:"lastName" db:"last_name" example:"Doe"`                     // User's last name
	RoleType    RoleType   `json:"roleType" db:"role_type" example:"SCHOOL_ADMIN"`            // User's role (SUPERADMIN or SCHOOL_ADMIN)
	SchoolID    *int64     `json:"schoolId,omitempty" db:"school_id" example:"1"`             // Tenant scope (nil for superadmin)
	IsActive    bool       `json:"isActive" db:"is_active" example:"true"`                    // Whether the user account is active
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"`  // Timestamp when the user was created
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" example:"2024-01-02T15:30:00Z"`  // Timestamp when the user was last updated
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`                  // Timestamp of the last login (nullable)
}
