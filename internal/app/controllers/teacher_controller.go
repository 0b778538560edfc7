package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/app/services"
	"github.com/mertz/schooladmin/internal/middleware"
	"github.com/mertz/schooladmin/internal/pkg/helpers"
)

// TeacherController handles teacher profile endpoints
type TeacherController struct {
	teacherService *services.TeacherService
}

// NewTeacherController creates a new TeacherController
func NewTeacherController(teacherService *services.TeacherService) *TeacherController {
	return &TeacherController{teacherService: teacherService}
}

// CreateTeacher creates a teacher with a provisioned identity
// @Summary Create a teacher
// @Description Creates a teacher profile and provisions an identity account for it, with the same compensation behavior as student creation.
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateTeacherRequest true "Teacher details"
// @Success 201 {object} dto.APIResponse{data=models.Teacher} "Teacher created"
// @Failure 409 {object} dto.ErrorResponse "Employee number already in use"
// @Failure 502 {object} dto.ErrorResponse "Identity service unavailable"
// @Router /teachers [post]
func (c *TeacherController) CreateTeacher(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}

	var req dto.CreateTeacherRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	teacher, err := c.teacherService.CreateTeacher(ctx.Request.Context(), schoolID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("Teacher created successfully", teacher))
}

// GetTeacher retrieves a teacher with documents
// @Summary Get a teacher
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} dto.APIResponse{data=models.Teacher} "Teacher retrieved"
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Router /teachers/{id} [get]
func (c *TeacherController) GetTeacher(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	teacher, err := c.teacherService.GetTeacher(ctx.Request.Context(), schoolID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Teacher retrieved", teacher))
}

// ListTeachers lists teachers with optional search
// @Summary List teachers
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or employee number"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.TeacherListResponse} "Teachers retrieved"
// @Router /teachers [get]
func (c *TeacherController) ListTeachers(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}

	page, size := parsePagination(ctx)
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	teachers, total, err := c.teacherService.ListTeachers(ctx.Request.Context(), schoolID, ctx.Query("search"), offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.TeacherListResponse{
		Teachers:   teachers,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Teachers retrieved", response))
}

// UpdateTeacher patches a teacher profile
// @Summary Update a teacher
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param request body dto.UpdateTeacherRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=models.Teacher} "Teacher updated"
// @Failure 404 {object} dto.ErrorResponse "Teacher not found"
// @Router /teachers/{id} [put]
func (c *TeacherController) UpdateTeacher(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateTeacherRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	teacher, err := c.teacherService.UpdateTeacher(ctx.Request.Context(), schoolID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Teacher updated successfully", teacher))
}

// BulkDeleteTeachers deletes a batch of teachers with their identities
// @Summary Bulk delete teachers
// @Description Same contract as bulk student deletion: all ids must resolve, items are processed independently, the report carries per-item outcomes.
// @Tags teachers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Ids to delete"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteReport} "All deletions succeeded"
// @Success 207 {object} dto.ErrorResponse "Partial success, see report in details"
// @Failure 404 {object} dto.ErrorResponse "Some ids did not resolve"
// @Router /teachers [delete]
func (c *TeacherController) BulkDeleteTeachers(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}

	var req dto.BulkDeleteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil || len(req.IDs) == 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A non-empty ids list is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	report, err := c.teacherService.DeleteTeachers(ctx.Request.Context(), schoolID, req.IDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	writeBulkReport(ctx, report)
}

// UploadDocument stores a document for a teacher
// @Summary Upload a teacher document
// @Tags teachers
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Param file formData file true "Document file"
// @Param documentType formData string true "Semantic document type"
// @Success 201 {object} dto.APIResponse{data=models.Document} "Document stored"
// @Router /teachers/{id}/documents [post]
func (c *TeacherController) UploadDocument(ctx *gin.Context) {
	schoolID, userID, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	fileHeader, documentType, ok := bindDocumentUpload(ctx)
	if !ok {
		return
	}

	doc, err := c.teacherService.AddDocument(ctx.Request.Context(), schoolID, id, userID, fileHeader, documentType)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("Document stored successfully", doc))
}

// ListDocuments lists a teacher's document metadata
// @Summary List teacher documents
// @Tags teachers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Teacher ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents retrieved"
// @Router /teachers/{id}/documents [get]
func (c *TeacherController) ListDocuments(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	docs, err := c.teacherService.ListDocuments(ctx.Request.Context(), schoolID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Documents retrieved", docs))
}
