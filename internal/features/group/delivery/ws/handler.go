package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"kamba-santa-backend/internal/common/logger"
	"kamba-santa-backend/internal/common/middleware"
	"kamba-santa-backend/internal/features/group/service"
	"kamba-santa-backend/internal/realtime"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Token auth happens in middleware; origin is not the trust boundary.
		return true
	},
}

// GroupStreamHandler pushes live group state over websockets. Each connection
// subscribes to a change feed and re-reads the current state on every
// notification, so clients always receive full snapshots, never deltas.
type GroupStreamHandler struct {
	service service.GroupService
	hub     *realtime.Hub
}

func NewGroupStreamHandler(service service.GroupService, hub *realtime.Hub) *GroupStreamHandler {
	return &GroupStreamHandler{service: service, hub: hub}
}

func (h *GroupStreamHandler) RegisterRoutes(router *gin.RouterGroup) {
	ws := router.Group("/ws")
	{
		ws.GET("/groups/public", h.streamPublicGroups)
		ws.GET("/groups/:id", h.streamGroup)
		ws.GET("/me/groups", h.streamMyGroups)
	}
}

// fetchFunc loads the current snapshot for a stream.
type fetchFunc func(ctx context.Context) (interface{}, error)

func (h *GroupStreamHandler) streamGroup(c *gin.Context) {
	groupID := c.Param("id")
	h.stream(c, realtime.GroupChannel(groupID), func(ctx context.Context) (interface{}, error) {
		return h.service.GetByID(ctx, groupID)
	})
}

func (h *GroupStreamHandler) streamMyGroups(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	h.stream(c, realtime.MemberGroupsChannel(userID), func(ctx context.Context) (interface{}, error) {
		return h.service.ListMine(ctx, userID)
	})
}

func (h *GroupStreamHandler) streamPublicGroups(c *gin.Context) {
	h.stream(c, realtime.PublicGroupsChannel, func(ctx context.Context) (interface{}, error) {
		return h.service.ListPublic(ctx)
	})
}

func (h *GroupStreamHandler) stream(c *gin.Context, channel string, fetch fetchFunc) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := h.hub.Subscribe(ctx, channel)
	defer sub.Close()

	// Read pump: client payloads are ignored, but reading is what surfaces
	// pongs and connection loss.
	go func() {
		defer cancel()
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.push(ctx, conn, fetch) {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
			if !h.push(ctx, conn, fetch) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *GroupStreamHandler) push(ctx context.Context, conn *websocket.Conn, fetch fetchFunc) bool {
	snapshot, err := fetch(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to load stream snapshot")
		return false
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(snapshot); err != nil {
		return false
	}
	return true
}
