package model

// LoginRequest carries the credentials presented to the token endpoint.
type LoginRequest struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// CreateAccountRequest provisions a new identity. Role defaults to patient
// when omitted, matching the public signup flow.
type CreateAccountRequest struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
	Role     Role   `json:"role" binding:"omitempty,clinicrole"`
}

// TokenResponse is the login success payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NewTokenResponse wraps an access token as a bearer credential.
func NewTokenResponse(accessToken string) *TokenResponse {
	return &TokenResponse{
		AccessToken: accessToken,
		TokenType:   "bearer",
	}
}
