package dto

import (
	"time"

	"github.com/mertz/schooladmin/internal/app/models"
)

// CreateTeacherRequest is the payload for creating a teacher profile.
// Teachers are always created directly and provisioned immediately.
type CreateTeacherRequest struct {
	FirstName      string          `json:"firstName" binding:"required" validate:"required,min=1,max=100"`
	LastName       string          `json:"lastName" binding:"required" validate:"required,min=1,max=100"`
	Email          string          `json:"email" binding:"required" validate:"required,email"`
	Phone          string          `json:"phone" binding:"required" validate:"required"`
	EmployeeNumber string          `json:"employeeNumber" binding:"required" validate:"required"`
	Qualification  *string         `json:"qualification,omitempty"`
	JoiningDate    *time.Time      `json:"joiningDate,omitempty"`
	Documents      []DocumentInput `json:"documents,omitempty" validate:"omitempty,dive"`
}

// UpdateTeacherRequest is the patch payload for an existing teacher
type UpdateTeacherRequest struct {
	FirstName     *string    `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName      *string    `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	Email         *string    `json:"email,omitempty" validate:"omitempty,email"`
	Phone         *string    `json:"phone,omitempty"`
	Qualification *string    `json:"qualification,omitempty"`
	JoiningDate   *time.Time `json:"joiningDate,omitempty"`
}

// TeacherFilterRequest holds list filters
type TeacherFilterRequest struct {
	Page int `form:"page"`
	Size int `form:"size"`
}

// TeacherListResponse is the paginated list payload
type TeacherListResponse struct {
	Teachers   []*models.Teacher `json:"teachers"`
	Pagination PaginationInfo    `json:"pagination"`
}
