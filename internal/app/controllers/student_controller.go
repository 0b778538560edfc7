package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mertz/schooladmin/internal/app/models/dto"
	"github.com/mertz/schooladmin/internal/app/services"
	"github.com/mertz/schooladmin/internal/middleware"
	"github.com/mertz/schooladmin/internal/pkg/helpers"
)

// StudentController handles student profile endpoints
type StudentController struct {
	studentService *services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService *services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// CreateStudent creates an admitted student with a provisioned identity
// @Summary Create a student
// @Description Creates a student profile and provisions an identity account for it. On a local failure after provisioning, the identity is removed again; the error details carry the compensation outcome.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateStudentRequest true "Student details"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student created"
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Admission number already in use"
// @Failure 502 {object} dto.ErrorResponse "Identity service unavailable"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}

	var req dto.CreateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.studentService.CreateStudent(ctx.Request.Context(), schoolID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("Student created successfully", student))
}

// GetStudent retrieves a student with relations
// @Summary Get a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student retrieved"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	student, err := c.studentService.GetStudent(ctx.Request.Context(), schoolID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Student retrieved", student))
}

// ListStudents lists students with optional filters
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (PENDING, ACCEPTED, REJECTED)"
// @Param search query string false "Search by name or admission number"
// @Param page query int false "Page number (1-based)" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.StudentListResponse} "Students retrieved"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}

	var filter dto.StudentFilterRequest
	if err := ctx.ShouldBindQuery(&filter); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	page, size := filter.Page, filter.Size
	if page == 0 && size == 0 {
		page, size = parsePagination(ctx)
	}
	offset, limit := helpers.CalculateOffsetLimit(page, size)

	students, total, err := c.studentService.ListStudents(ctx.Request.Context(), schoolID,
		filter.Status, ctx.Query("search"), offset, limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	response := dto.StudentListResponse{
		Students:   students,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Students retrieved", response))
}

// UpdateStudent patches a student profile
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.UpdateStudentRequest true "Fields to update"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student updated"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	student, err := c.studentService.UpdateStudent(ctx.Request.Context(), schoolID, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Student updated successfully", student))
}

// BulkDeleteStudents deletes a batch of students with their identities
// @Summary Bulk delete students
// @Description Deletes the given students and their identity accounts. All ids must resolve or nothing is deleted. Items are processed independently afterwards; the report carries per-item outcomes. 200 means everything succeeded, 207 a partial result, 500 that no profile was deleted.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteRequest true "Ids to delete"
// @Success 200 {object} dto.APIResponse{data=dto.BulkDeleteReport} "All deletions succeeded"
// @Success 207 {object} dto.ErrorResponse "Partial success, see report in details"
// @Failure 404 {object} dto.ErrorResponse "Some ids did not resolve"
// @Router /students [delete]
func (c *StudentController) BulkDeleteStudents(ctx *gin.Context) {
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

	report, err := c.studentService.DeleteStudents(ctx.Request.Context(), schoolID, req.IDs)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	writeBulkReport(ctx, report)
}

// UploadDocument stores a document for a student
// @Summary Upload a student document
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param file formData file true "Document file"
// @Param documentType formData string true "Semantic document type"
// @Success 201 {object} dto.APIResponse{data=models.Document} "Document stored"
// @Router /students/{id}/documents [post]
func (c *StudentController) UploadDocument(ctx *gin.Context) {
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

	doc, err := c.studentService.AddDocument(ctx.Request.Context(), schoolID, id, userID, fileHeader, documentType)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse("Document stored successfully", doc))
}

// ListDocuments lists a student's document metadata
// @Summary List student documents
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Document} "Documents retrieved"
// @Router /students/{id}/documents [get]
func (c *StudentController) ListDocuments(ctx *gin.Context) {
	schoolID, _, ok := requestScope(ctx)
	if !ok {
		return
	}
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	docs, err := c.studentService.ListDocuments(ctx.Request.Context(), schoolID, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse("Documents retrieved", docs))
}
