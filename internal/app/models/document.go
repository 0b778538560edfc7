package models

import "time"

// Document holds binary-reference metadata based on the 'documents' table.
// Exactly one of StudentID/TeacherID is set; the row is removed by the
// database cascade when the owning profile is deleted.
type Document struct {
	ID           int64     `json:"id" db:"id" example:"1"`                        // Unique identifier for the document
	StudentID    *int64    `json:"studentId,omitempty" db:"student_id"`           // Owning student (nullable)
	TeacherID    *int64    `json:"teacherId,omitempty" db:"teacher_id"`           // Owning teacher (nullable)
	Name         string    `json:"name" db:"name" example:"birth-certificate.pdf"` // Original file name
	DocumentType string    `json:"documentType" db:"document_type" example:"BIRTH_CERTIFICATE"` // Semantic document type
	StorageKey   string    `json:"storageKey" db:"storage_key"`                   // Key into the object storage service
	MimeType     string    `json:"mimeType" db:"mime_type" example:"application/pdf"` // MIME type
	FileSize     int64     `json:"fileSize" db:"file_size" example:"24576"`       // Size in bytes
	UploadedBy   int64     `json:"uploadedBy" db:"uploaded_by" example:"3"`       // Staff user who uploaded the file
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`                     // Timestamp when the document was uploaded
}
