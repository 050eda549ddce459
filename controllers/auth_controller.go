package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/middleware"
	"github.com/Nickflanagn24/bookstore/services"
)

type AuthController struct {
	Auth   services.AuthService
	Logger *zap.Logger
}

func NewAuthController(auth services.AuthService, logger *zap.Logger) *AuthController {
	return &AuthController{Auth: auth, Logger: logger}
}

// Register creates an account and returns a signed token.
func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, svcErr := ac.Auth.Register(c.Request.Context(), input)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// Login exchanges credentials for a signed token.
func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, svcErr := ac.Auth.Login(c.Request.Context(), input)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Me returns the authenticated account.
func (ac *AuthController) Me(c *gin.Context) {
	user, svcErr := ac.Auth.GetUser(c.Request.Context(), middleware.GetUserID(c))
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, user)
}
