package dto

// CreateSchoolRequest is the payload for creating a tenant
type CreateSchoolRequest struct {
	Name    string  `json:"name" binding:"required" validate:"required,min=2,max=150"`
	Code    string  `json:"code" binding:"required" validate:"required,min=2,max=20"`
	Address *string `json:"address,omitempty"`
}
