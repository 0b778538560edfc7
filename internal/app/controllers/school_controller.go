package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/app/services"
	"github.com/mertz/schooladmin/internal/middleware"
)

// SchoolController handles school (tenant) management endpoints
type SchoolController struct {
	schoolService *services.SchoolService
}

// NewSchoolController creates a new SchoolController
func NewSchoolController(schoolService *services.SchoolService) *SchoolController {
	return &SchoolController{schoolService: schoolService}
}

// CreateSchool registers a new school tenant
// @Summary Create a school
// @Tags schools
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSchoolRequest true "School details"
// @Success 201 {object} dto.APIResponse{data=models.School} "School created"
// @Failure 409 {object} dto.ErrorResponse "School code already exists"
// @Router /schools [post]
func (c *SchoolController) CreateSchool(ctx *gin.Context) {
	var req dto.CreateSchoolRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	school, err := c.schoolService.CreateSchool(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("School created successfully", school))
}

// GetSchools lists all schools
// @Summary List schools
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.School} "Schools retrieved"
// @Router /schools [get]
func (c *SchoolController) GetSchools(ctx *gin.Context) {
	schools, err := c.schoolService.GetSchools(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Schools retrieved", schools))
}

// GetSchool retrieves one school by id
// @Summary Get a school
// @Tags schools
// @Produce json
// @Security BearerAuth
// @Param id path int true "School ID"
// @Success 200 {object} dto.APIResponse{data=models.School} "School retrieved"
// @Failure 404 {object} dto.ErrorResponse "School not found"
// @Router /schools/{id} [get]
func (c *SchoolController) GetSchool(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	school, err := c.schoolService.GetSchool(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("School retrieved", school))
}
