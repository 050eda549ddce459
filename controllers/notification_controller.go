package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/models"
	"github.com/Nickflanagn24/bookstore/services"
)

type NotificationController struct {
	Notifications services.NotificationService
	Logger        *zap.Logger
}

func NewNotificationController(notifications services.NotificationService, logger *zap.Logger) *NotificationController {
	return &NotificationController{Notifications: notifications, Logger: logger}
}

// Logs lists notification dispatch records. Staff only.
func (nc *NotificationController) Logs(c *gin.Context) {
	page, perPage := pagination(c)

	filter := models.NotificationFilter{
		Status:   c.Query("status"),
		Type:     c.Query("type"),
		Page:     page,
		PageSize: perPage,
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id"})
			return
		}
		filter.UserID = &userID
	}

	logs, total, svcErr := nc.Notifications.GetLogs(c.Request.Context(), filter)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, paginated(logs, total, page, perPage))
}

// SendTest fires a test email to verify SMTP configuration. Staff only.
func (nc *NotificationController) SendTest(c *gin.Context) {
	var req struct {
		To string `json:"to" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	log, svcErr := nc.Notifications.SendTest(c.Request.Context(), req.To)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, log)
}
