package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/services"
)

type NewsletterController struct {
	Newsletter services.NewsletterService
	Logger     *zap.Logger
}

func NewNewsletterController(newsletter services.NewsletterService, logger *zap.Logger) *NewsletterController {
	return &NewsletterController{Newsletter: newsletter, Logger: logger}
}

// Subscribe starts double opt-in for an email address.
func (nc *NewsletterController) Subscribe(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, svcErr := nc.Newsletter.Subscribe(c.Request.Context(), req.Email)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}

	if result.AlreadySubscribed {
		c.JSON(http.StatusOK, gin.H{"message": "You are already subscribed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Please check your inbox to confirm your subscription"})
}

// Confirm completes double opt-in via the emailed token.
func (nc *NewsletterController) Confirm(c *gin.Context) {
	token, ok := parseUUIDParam(c, "token")
	if !ok {
		return
	}

	sub, svcErr := nc.Newsletter.Confirm(c.Request.Context(), token)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Subscription confirmed. Welcome aboard!",
		"email":   sub.Email,
	})
}

// Unsubscribe deactivates a subscription via the emailed token.
func (nc *NewsletterController) Unsubscribe(c *gin.Context) {
	token, ok := parseUUIDParam(c, "token")
	if !ok {
		return
	}

	if svcErr := nc.Newsletter.Unsubscribe(c.Request.Context(), token); svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have been unsubscribed"})
}
