package models

import "time"

// School defines the tenant model based on the 'schools' table
type School struct {
	ID        int64     `json:"id" db:"id" example:"1"`                                  // Unique identifier for the school
	Name      string    `json:"name" db:"name" example:"Riverside High School"`          // Display name
	Code      string    `json:"code" db:"code" example:"RHS"`                            // Short unique code
	Address   *string   `json:"address,omitempty" db:"address"`                          // Postal address (nullable)
	CreatedAt time.Time `json:"createdAt" db:"created_at" example:"2024-01-01T10:00:00Z"` // Timestamp when the school was created
}
