package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kamba-santa-backend/internal/common/middleware"
	"kamba-santa-backend/internal/features/matchmaking/service"
)

type MatchmakingHandler struct {
	service service.MatchmakingService
}

func NewMatchmakingHandler(service service.MatchmakingService) *MatchmakingHandler {
	return &MatchmakingHandler{service: service}
}

func (h *MatchmakingHandler) RegisterRoutes(router *gin.RouterGroup) {
	matchmaking := router.Group("/matchmaking")
	{
		matchmaking.POST("/join", h.join)
		matchmaking.POST("/leave", h.leave)
	}
}

// @Summary Join the public matchmaking queue
// @Description Queues the caller; when four players accumulate a public group is formed and drawn immediately.
// @Tags matchmaking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.QueueResult
// @Failure 503 {object} middleware.ErrorResponse
// @Router /matchmaking/join [post]
func (h *MatchmakingHandler) join(c *gin.Context) {
	result, err := h.service.JoinQueue(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Leave the public matchmaking queue
// @Tags matchmaking
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /matchmaking/leave [post]
func (h *MatchmakingHandler) leave(c *gin.Context) {
	if err := h.service.LeaveQueue(c.Request.Context(), middleware.UserIDFromContext(c)); err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
