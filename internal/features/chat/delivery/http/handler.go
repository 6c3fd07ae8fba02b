package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/common/middleware"
	"kamba-santa-backend/internal/features/chat/models"
	"kamba-santa-backend/internal/features/chat/service"
)

type ChatHandler struct {
	service service.ChatService
}

func NewChatHandler(service service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/groups")
	{
		groups.GET("/:id/messages", h.listMessages)
		groups.POST("/:id/messages", h.sendMessage)
	}
}

// @Summary List group messages
// @Description Returns the most recent messages in chronological order. Members only.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Param limit query int false "Max messages" default(100)
// @Success 200 {array} models.Message
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id}/messages [get]
func (h *ChatHandler) listMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	messages, err := h.service.ListMessages(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), limit)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// @Summary Send a group message
// @Description Appends a chat message. Members only.
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Param input body models.MessageCreate true "Message"
// @Success 201 {object} models.Message
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id}/messages [post]
func (h *ChatHandler) sendMessage(c *gin.Context) {
	var input models.MessageCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid message payload"))
		return
	}

	message, err := h.service.SendMessage(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c), input.Text)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}
