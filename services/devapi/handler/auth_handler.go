package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lotmarket/internal/repository"
	"lotmarket/services/devapi/helpers"
	"lotmarket/utils"
)

// TokenMinter creates a signed bearer token for a profile
type TokenMinter func(name, email string) (string, error)

// AuthHandler serves the /auth endpoints
type AuthHandler struct {
	repo repository.MarketDB
	mint TokenMinter
}

// NewAuthHandler creates the auth handler
func NewAuthHandler(repo repository.MarketDB, mint TokenMinter) *AuthHandler {
	return &AuthHandler{repo: repo, mint: mint}
}

// RegisterHandler handles POST /auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.repo.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		helpers.JSONErrorFor(c, "RegisterHandler", err)
		return
	}

	utils.JSONData(c, http.StatusCreated, user)
	utils.Info("RegisterHandler: profile created", map[string]any{"name": user.Name})
}

// LoginHandler handles POST /auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	user, err := h.repo.Authenticate(req.Email, req.Password)
	if err != nil {
		helpers.JSONErrorFor(c, "LoginHandler", err)
		return
	}

	token, err := h.mint(user.Name, user.Email)
	if err != nil {
		helpers.JSONErrorFor(c, "LoginHandler", err)
		return
	}
	user.AccessToken = token

	utils.JSONData(c, http.StatusOK, user)
	utils.Info("LoginHandler: session issued", map[string]any{"name": user.Name})
}

// CreateAPIKeyHandler handles POST /auth/create-api-key (bearer required)
func (h *AuthHandler) CreateAPIKeyHandler(c *gin.Context) {
	key := h.repo.IssueAPIKey()
	utils.JSONData(c, http.StatusCreated, helpers.APIKeyResponse{Key: key})
}
