package models

import "time"

// Teacher defines the teacher profile based on the 'teachers' table. Teachers
// are always created directly, already provisioned.
type Teacher struct {
	ID                 int64      `json:"id" db:"id" example:"1"`                                 // Unique identifier for the teacher record
	SchoolID           int64      `json:"schoolId" db:"school_id" example:"1"`                    // Owning school (tenant scope)
	EmployeeNumber     string     `json:"employeeNumber" db:"employee_number" example:"EMP-1042"` // Unique per school
	FirstName          string     `json:"firstName" db:"first_name" example:"Elif"`               // Teacher's first name
	LastName           string     `json:"lastName" db:"last_name" example:"Demir"`                // Teacher's last name
	Email              string     `json:"email" db:"email"`                                       // Contact email
	Phone              string     `json:"phone" db:"phone"`                                       // Contact phone
	Qualification      *string    `json:"qualification,omitempty" db:"qualification"`             // Highest qualification (nullable)
	JoiningDate        *time.Time `json:"joiningDate,omitempty" db:"joining_date"`                // Date of joining (nullable)
	ExternalIdentityID *int64     `json:"externalIdentityId,omitempty" db:"external_identity_id"` // Weak reference into the identity service
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`                              // Timestamp when the record was created
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`                              // Timestamp when the record was last updated

	// Relations (populated when needed)
	Documents []*Document `json:"documents,omitempty"` // Owned document metadata
}
