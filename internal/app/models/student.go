package models

import "time"

// Student defines the student profile based on the 'students' table. A row is
// created either directly (already ACCEPTED and provisioned) or through a
// public admission application (PENDING, no identity yet).
type Student struct {
	ID                 int64             `json:"id" db:"id" example:"1"`                             // Unique identifier for the student record
	SchoolID           int64             `json:"schoolId" db:"school_id" example:"1"`                // Owning school (tenant scope)
	AdmissionNumber    *string           `json:"admissionNumber,omitempty" db:"admission_number"`    // Unique per school; nil while PENDING
	AdmissionDate      *time.Time        `json:"admissionDate,omitempty" db:"admission_date"`        // Date of admission; nil while PENDING
	FirstName          string            `json:"firstName" db:"first_name" example:"Arda"`           // Student's first name
	LastName           string            `json:"lastName" db:"last_name" example:"Yilmaz"`           // Student's last name
	Email              *string           `json:"email,omitempty" db:"email"`                         // Contact email (required before provisioning)
	Phone              *string           `json:"phone,omitempty" db:"phone"`                         // Contact phone (required before provisioning)
	DateOfBirth        *time.Time        `json:"dateOfBirth,omitempty" db:"date_of_birth"`           // Date of birth (nullable)
	Gender             *string           `json:"gender,omitempty" db:"gender"`                       // Gender (nullable)
	Address            *string           `json:"address,omitempty" db:"address"`                     // Home address (nullable)
	Status             ApplicationStatus `json:"status" db:"status" example:"ACCEPTED"`              // PENDING, ACCEPTED or REJECTED
	ExternalIdentityID *int64            `json:"externalIdentityId,omitempty" db:"external_identity_id"` // Weak reference into the identity service; nil until provisioned
	StatusMetadata     map[string]interface{} `json:"statusMetadata,omitempty" db:"status_metadata"` // Rejection reason/actor/time (JSONB)
	CreatedAt          time.Time         `json:"createdAt" db:"created_at"`                          // Timestamp when the record was created
	UpdatedAt          time.Time         `json:"updatedAt" db:"updated_at"`                          // Timestamp when the record was last updated

	// Relations (populated when needed)
	Guardians  []*Guardian  `json:"guardians,omitempty"`  // Linked guardians with relation labels
	Enrollment *Enrollment  `json:"enrollment,omitempty"` // Current enrollment
	Documents  []*Document  `json:"documents,omitempty"`  // Owned document metadata
}
