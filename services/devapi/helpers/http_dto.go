package helpers

import "lotmarket/internal/models"

// Request DTOs for the dev API, matching the hosted API's request bodies
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ListingRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	EndsAt      string         `json:"endsAt"`
	Media       []models.Media `json:"media"`
	Tags        []string       `json:"tags"`
}

type BidRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type ProfileUpdateRequest struct {
	Bio    string        `json:"bio"`
	Avatar *models.Media `json:"avatar"`
}

// APIKeyResponse is the create-api-key payload shape clients expect
type APIKeyResponse struct {
	Key string `json:"key"`
}
