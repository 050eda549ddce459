package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Nickflanagn24/bookstore/services"
)

type ContactController struct {
	Contact services.ContactService
	Logger  *zap.Logger
}

func NewContactController(contact services.ContactService, logger *zap.Logger) *ContactController {
	return &ContactController{Contact: contact, Logger: logger}
}

// Submit stores a contact-form message.
func (cc *ContactController) Submit(c *gin.Context) {
	var input services.ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, svcErr := cc.Contact.Submit(c.Request.Context(), input)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Thanks for getting in touch. We will reply soon.",
		"id":      msg.ID,
	})
}

// List returns contact messages for staff review.
func (cc *ContactController) List(c *gin.Context) {
	page, perPage := pagination(c)

	messages, total, svcErr := cc.Contact.List(c.Request.Context(), page, perPage)
	if svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, paginated(messages, total, page, perPage))
}

// MarkRead flags a message as handled. Staff only.
func (cc *ContactController) MarkRead(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}

	if svcErr := cc.Contact.MarkRead(c.Request.Context(), id); svcErr != nil {
		abortWithServiceError(c, svcErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}
