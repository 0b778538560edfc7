package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/pkg/apperrors"
)

// HandleAPIError maps service errors to the standard error envelope. Details
// attached to a CustomError (compensation outcome, orphaned identity id) are
// passed through to the caller.
func HandleAPIError(c *gin.Context, err error) {
	status, detail := classifyError(err)

	var customErr *apperrors.CustomError
	if errors.As(err, &customErr) {
		if customErr.Message != "" {
			detail.Message = customErr.Message
		}
		if customErr.Details != nil {
			detail = detail.WithDetails(customErr.Details)
		}
	}

	c.JSON(status, dto.NewErrorResponse(detail))
}

func classifyError(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found")
	case errors.Is(err, apperrors.ErrTeacherNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Teacher not found")
	case errors.Is(err, apperrors.ErrApplicationNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Application not found")
	case errors.Is(err, apperrors.ErrSchoolNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "School not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "User not found")
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found")

	case errors.Is(err, apperrors.ErrAdmissionNumberExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, "Admission number already in use").WithField("admissionNumber")
	case errors.Is(err, apperrors.ErrEmployeeNumberExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, "Employee number already in use").WithField("employeeNumber")
	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already exists")
	case errors.Is(err, apperrors.ErrSchoolAlreadyExists):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, "School with this code already exists").WithField("code")
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, "Conflict")

	case errors.Is(err, apperrors.ErrGuardianRequired):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "At least one guardian is required").WithField("guardians")
	case errors.Is(err, apperrors.ErrContactInfoRequired):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Contact email and phone are required before acceptance")
	case apperrors.Is(err, apperrors.ErrValidationFailed, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Account is disabled")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")

	case errors.Is(err, apperrors.ErrDownstreamService):
		return http.StatusBadGateway, dto.NewErrorDetail(dto.ErrorCodeExternalServiceError, "Identity service unavailable")

	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}
