package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/app/services"
	"github.com/mertz/schooladmin/internal/middleware"
	"github.com/mertz/schooladmin/internal/pkg/helpers"
)

// ApplicationController handles the admission application lifecycle endpoints
type ApplicationController struct {
	applicationService *services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService *services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

// SubmitApplication receives a public admission application. The request body
// is validated by the ValidateRequest middleware on this route.
// @Summary Submit an admission application
// @Description Records an admission application in PENDING state. No admission number is assigned and no identity account is created until the application is accepted.
// @Tags applications
// @Accept json
// @Produce json
// @Param request body dto.SubmitApplicationRequest true "Application details"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Router /applications [post]
func (c *ApplicationController) SubmitApplication(ctx *gin.Context) {
	body, exists := ctx.Get("validatedBody")
	req, ok := body.(*dto.SubmitApplicationRequest)
	if !exists || !ok {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Request body not validated")
		ctx.JSON(http.StatusInternalServerError, dto.NewErrorResponse(errorDetail))
		return
	}

	application, err := c.applicationService.SubmitApplication(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("Application submitted successfully", application))
}

// ListApplications lists PENDING applications of the caller's school
// @Summary List pending applications
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse} "Applications retrieved"
// @Router /applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}

	page, size := parsePagination(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	applications, total, err := c.applicationService.ListApplications(ctx.Request.Context(), schoolID, offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.StudentListResponse{
		Students:   applications,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Applications retrieved", response))
}

// AcceptApplication accepts a pending application
// @Summary Accept an application
// @Description Promotes a PENDING application to an admitted student: provisions an identity account, assigns the admission number and creates the initial enrollment. A decided or missing application responds 404. On a local failure after provisioning, the identity is removed again; the error details carry the compensation outcome.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.AcceptApplicationRequest true "Admission decision details"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Application accepted"
// @Failure 400 {object} dto.ErrorResponse "Contact details missing"
// @Failure 404 {object} dto.ErrorResponse "Application not found or already decided"
// @Failure 409 {object} dto.ErrorResponse "Admission number already in use"
// @Failure 502 {object} dto.ErrorResponse "Identity service unavailable"
// @Router /applications/{id}/accept [post]
func (c *ApplicationController) AcceptApplication(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.AcceptApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.applicationService.AcceptApplication(ctx.Request.Context(), schoolID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Application accepted successfully", student))
}

// RejectApplication rejects a pending application
// @Summary Reject an application
// @Description Marks a PENDING application as REJECTED and records the reason. Purely local; no identity account exists for a pending application.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Param request body dto.RejectApplicationRequest true "Rejection reason"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Application rejected"
// @Failure 404 {object} dto.ErrorResponse "Application not found or already decided"
// @Router /applications/{id}/reject [post]
func (c *ApplicationController) RejectApplication(ctx *gin.Context) {
	schoolID, userID, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.RejectApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.applicationService.RejectApplication(ctx.Request.Context(), schoolID, id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Application rejected successfully", student))
}
