package models

import "time"

// Guardian defines a contact entity based on the 'guardians' table. Guardians
// are shared between students through guardian links; a guardian whose last
// link is removed is deleted with it.
type Guardian struct {
	ID        int64     `json:"id" db:"id" example:"1"`                  // Unique identifier for the guardian
	SchoolID  int64     `json:"schoolId" db:"school_id" example:"1"`     // Owning school (tenant scope)
	FirstName string    `json:"firstName" db:"first_name" example:"Ali"` // Guardian's first name
	LastName  string    `json:"lastName" db:"last_name" example:"Yilmaz"` // Guardian's last name
	Phone     string    `json:"phone" db:"phone" example:"+905551112233"` // Contact phone (dedupe key within a school)
	Email     *string   `json:"email,omitempty" db:"email"`              // Contact email (nullable)
	CreatedAt time.Time `json:"createdAt" db:"created_at"`               // Timestamp when the guardian was created

	// Relation label, populated when the guardian is loaded through a link
	Relation GuardianRelation `json:"relation,omitempty" db:"relation"`
}

// GuardianLink ties a guardian to a student based on the 'guardian_links' table
type GuardianLink struct {
	ID         int64            `json:"id" db:"id"`                 // Unique identifier for the link
	StudentID  int64            `json:"studentId" db:"student_id"`  // Linked student
	GuardianID int64            `json:"guardianId" db:"guardian_id"` // Linked guardian
	Relation   GuardianRelation `json:"relation" db:"relation"`     // FATHER, MOTHER, GUARDIAN or a custom label
}
