package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"

	"github.com/marginalfriend/my-garage/internal/auth/application"
	"github.com/marginalfriend/my-garage/internal/auth/domain"
)

// AuthHandler 注册与登录的 HTTP 处理器
type AuthHandler struct {
	svc *application.AuthService
}

func NewAuthHandler(svc *application.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/auth")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
	}
}

type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
}

// Register 注册新顾客
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	customerID, err := h.svc.Register(c.Request.Context(), application.RegisterCommand{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			response.ErrorWithStatus(c, http.StatusBadRequest, "Email already in use", "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to register account", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "An error occurred during registration", "")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"userId":  customerID,
	})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 登录并返回访问令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			response.ErrorWithStatus(c, http.StatusForbidden, "Invalid credentials", "")
			return
		}
		logging.Error(c.Request.Context(), "Failed to login", "error", err)
		response.ErrorWithStatus(c, http.StatusInternalServerError, "An error occurred during login", "")
		return
	}

	response.Success(c, gin.H{"accessToken": token})
}
