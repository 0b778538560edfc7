package models

import "time"

// Enrollment ties a student to a class/section for an academic year, based on
// the 'enrollments' table. At most one enrollment per student is current.
type Enrollment struct {
	ID           int64     `json:"id" db:"id" example:"1"`                       // Unique identifier for the enrollment
	StudentID    int64     `json:"studentId" db:"student_id" example:"1"`        // Enrolled student
	ClassID      int64     `json:"classId" db:"class_id" example:"9"`            // Class within the school
	SectionID    int64     `json:"sectionId" db:"section_id" example:"2"`        // Section within the class
	AcademicYear string    `json:"academicYear" db:"academic_year" example:"2025-2026"` // Academic year label
	RollNumber   *string   `json:"rollNumber,omitempty" db:"roll_number"`        // Roll number within the section (nullable)
	IsCurrent    bool      `json:"isCurrent" db:"is_current" example:"true"`     // Whether this is the student's current enrollment
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`                    // Timestamp when the enrollment was created
}
