// Package controllers contains the gin HTTP handlers. Controllers translate
// between the wire format and the services; business rules live below them.
package controllers

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/middleware"
)

// parseIDParam reads a positive int64 path parameter. On failure it writes a
// 400 response and returns false.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter")
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}

// requestScope reads the tenant scope and user id set by the auth middleware.
// On failure it writes a 401 response and returns false.
func requestScope(c *gin.Context) (schoolID, userID int64, ok bool) {
	userID, ok = middleware.GetUserID(c)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
		return 0, 0, false
	}
	schoolID, ok = middleware.GetSchoolID(c)
	if !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "This operation requires a school-scoped account")
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
		return 0, 0, false
	}
	return schoolID, userID, true
}

// parsePagination reads 1-based page/size query parameters
func parsePagination(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}

// bindDocumentUpload reads the multipart file and document type form field.
// On failure it writes a 400 response and returns false.
func bindDocumentUpload(c *gin.Context) (*multipart.FileHeader, string, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A document file is required").WithDetails(err.Error())
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, "", false
	}

	documentType := c.PostForm("documentType")
	if documentType == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "documentType is required").WithField("documentType")
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return nil, "", false
	}
	return fileHeader, documentType, true
}

// writeBulkReport maps a bulk deletion report to its response tier. Full
// success uses the success envelope; partial and total failure use the error
// envelope with the report attached as details.
func writeBulkReport(c *gin.Context, report *dto.BulkDeleteReport) {
	status := report.HTTPStatus()
	if status == http.StatusOK {
		c.JSON(status, dto.NewSuccessResponse("Bulk deletion completed", report))
		return
	}

	message := "Bulk deletion partially failed"
	if report.Status == dto.BulkStatusFailure {
		message = "Bulk deletion failed"
	}
	errorDetail := dto.NewErrorDetail(dto.ErrorCodePartialFailure, message).WithDetails(report)
	c.JSON(status, dto.NewErrorResponse(errorDetail))
}
