package dto

// LoginRequest is the payload for staff login
type LoginRequest struct {
	Email    string `json:"email" binding:"required" validate:"required,email" example:"admin@school.edu"`
	Password string `json:"password" binding:"required" validate:"required" example:"secret123"`
}

// TokenResponse carries the issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int64  `json:"expiresIn" example:"3600"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn" example:"2592000"`
}

// UserProfile is the staff profile returned by /auth/profile
type UserProfile struct {
	ID         int64   `json:"id"`
	Email      string  `json:"email"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	RoleType   string  `json:"roleType"`
	SchoolID   *int64  `json:"schoolId,omitempty"`
	SchoolName *string `json:"schoolName,omitempty"`
}
