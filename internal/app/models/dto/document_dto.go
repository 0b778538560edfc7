package dto

// UploadDocumentRequest carries the form fields of a document upload.
// The binary itself arrives as multipart file content.
type UploadDocumentRequest struct {
	DocumentType string `form:"documentType" binding:"required" validate:"required"`
}
