package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/nishad-backend/internal/domain"
	"github.com/yungbote/nishad-backend/internal/http/response"
	"github.com/yungbote/nishad-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email     string `json:"email" binding:"required,email"`
		FirstName string `json:"first_name" binding:"required"`
		LastName  string `json:"last_name"`
		Phone     string `json:"phone"`
		Password  string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u := types.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Password:  req.Password,
	}
	if err := ah.authService.RegisterUser(c.Request.Context(), &u); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"user": u})
}

func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	accessToken, refreshToken, err := ah.authService.LoginUser(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	ah.respondTokens(c, accessToken, refreshToken)
}

func (ah *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	accessToken, refreshToken, err := ah.authService.RefreshUser(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.RespondDomainError(c, err)
		return
	}
	ah.respondTokens(c, accessToken, refreshToken)
}

func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.LogoutUser(c.Request.Context()); err != nil {
		response.RespondDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ah *AuthHandler) respondTokens(c *gin.Context, accessToken, refreshToken string) {
	response.RespondOK(c, gin.H{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"token_type":    "Bearer",
		"expires_in":    int(ah.authService.GetAccessTTL().Seconds()),
	})
}
