package dto

import (
	"time"

	"github.com/mertz/schooladmin/internal/app/models"
)

// GuardianInput is an explicit guardian entry on create/update requests
type GuardianInput struct {
	FirstName string  `json:"firstName" binding:"required" validate:"required"`
	LastName  string  `json:"lastName"`
	Phone     string  `json:"phone" binding:"required" validate:"required"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Relation  string  `json:"relation" binding:"required" validate:"required"`
}

// ParentInfo is the structured alternative to an explicit guardian list.
// Up to three guardian records are derived from it: the first token of each
// name becomes firstName, the remaining tokens the lastName.
type ParentInfo struct {
	FatherName       string `json:"fatherName,omitempty"`
	FatherPhone      string `json:"fatherPhone,omitempty"`
	MotherName       string `json:"motherName,omitempty"`
	MotherPhone      string `json:"motherPhone,omitempty"`
	GuardianName     string `json:"guardianName,omitempty"`
	GuardianPhone    string `json:"guardianPhone,omitempty"`
	GuardianRelation string `json:"guardianRelation,omitempty"`
}

// EnrollmentInput describes the class/section placement for a student
type EnrollmentInput struct {
	ClassID      int64   `json:"classId" binding:"required" validate:"required,gt=0"`
	SectionID    int64   `json:"sectionId" binding:"required" validate:"required,gt=0"`
	AcademicYear string  `json:"academicYear" binding:"required" validate:"required"`
	RollNumber   *string `json:"rollNumber,omitempty"`
}

// DocumentInput carries metadata of a file already placed in object storage
type DocumentInput struct {
	Name         string `json:"name" binding:"required" validate:"required"`
	DocumentType string `json:"documentType" binding:"required" validate:"required"`
	StorageKey   string `json:"storageKey" binding:"required" validate:"required"`
	MimeType     string `json:"mimeType,omitempty"`
	FileSize     int64  `json:"fileSize,omitempty"`
}

// CreateStudentRequest is the payload for the direct-creation path: the
// student is created already ACCEPTED and an identity is provisioned for it.
type CreateStudentRequest struct {
	FirstName       string          `json:"firstName" binding:"required" validate:"required,min=1,max=100"`
	LastName        string          `json:"lastName" binding:"required" validate:"required,min=1,max=100"`
	Email           string          `json:"email" binding:"required" validate:"required,email"`
	Phone           string          `json:"phone" binding:"required" validate:"required"`
	AdmissionNumber string          `json:"admissionNumber" binding:"required" validate:"required"`
	AdmissionDate   *time.Time      `json:"admissionDate,omitempty"`
	DateOfBirth     *time.Time      `json:"dateOfBirth,omitempty"`
	Gender          *string         `json:"gender,omitempty"`
	Address         *string         `json:"address,omitempty"`
	Guardians       []GuardianInput `json:"guardians,omitempty" validate:"omitempty,dive"`
	ParentInfo      *ParentInfo     `json:"parentInfo,omitempty"`
	Enrollment      *EnrollmentInput `json:"enrollment,omitempty"`
	Documents       []DocumentInput `json:"documents,omitempty" validate:"omitempty,dive"`
}

// UpdateStudentRequest is the patch payload for an existing student
type UpdateStudentRequest struct {
	FirstName   *string          `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName    *string          `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string          `json:"phone,omitempty"`
	DateOfBirth *time.Time       `json:"dateOfBirth,omitempty"`
	Gender      *string          `json:"gender,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Guardians   []GuardianInput  `json:"guardians,omitempty" validate:"omitempty,dive"`
	Enrollment  *EnrollmentInput `json:"enrollment,omitempty"`
}

// SubmitApplicationRequest is the public admission-application payload.
// No admission number and no identity yet; the record starts PENDING.
type SubmitApplicationRequest struct {
	SchoolID    int64           `json:"schoolId" binding:"required" validate:"required,gt=0"`
	FirstName   string          `json:"firstName" binding:"required" validate:"required,min=1,max=100"`
	LastName    string          `json:"lastName" binding:"required" validate:"required,min=1,max=100"`
	Email       string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string          `json:"phone,omitempty"`
	DateOfBirth *time.Time      `json:"dateOfBirth,omitempty"`
	Gender      *string         `json:"gender,omitempty"`
	Address     *string         `json:"address,omitempty"`
	Guardians   []GuardianInput `json:"guardians,omitempty" validate:"omitempty,dive"`
	ParentInfo  *ParentInfo     `json:"parentInfo,omitempty"`
}

// AcceptApplicationRequest carries the admission decision details
type AcceptApplicationRequest struct {
	AdmissionNumber string     `json:"admissionNumber" binding:"required" validate:"required"`
	AdmissionDate   *time.Time `json:"admissionDate,omitempty"`
	ClassID         int64      `json:"classId" binding:"required" validate:"required,gt=0"`
	SectionID       int64      `json:"sectionId" binding:"required" validate:"required,gt=0"`
	AcademicYear    string     `json:"academicYear" binding:"required" validate:"required"`
	RollNumber      *string    `json:"rollNumber,omitempty"`
}

// RejectApplicationRequest carries the rejection reason
type RejectApplicationRequest struct {
	Reason string `json:"reason" binding:"required" validate:"required,min=3"`
}

// StudentFilterRequest holds list filters
type StudentFilterRequest struct {
	Status string `form:"status" validate:"omitempty,oneof=PENDING ACCEPTED REJECTED"`
	Page   int    `form:"page"`
	Size   int    `form:"size"`
}

// StudentListResponse is the paginated list payload
type StudentListResponse struct {
	Students   []*models.Student `json:"students"`
	Pagination PaginationInfo    `json:"pagination"`
}
