package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/common/middleware"
	"kamba-santa-backend/internal/features/group/models"
	"kamba-santa-backend/internal/features/group/service"
	userservice "kamba-santa-backend/internal/features/user/service"
)

type GroupHandler struct {
	service service.GroupService
	users   userservice.UserService
}

func NewGroupHandler(service service.GroupService, users userservice.UserService) *GroupHandler {
	return &GroupHandler{service: service, users: users}
}

func (h *GroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/groups")
	{
		groups.POST("", h.create)
		groups.GET("/me", h.listMine)
		groups.GET("/public", h.listPublic)
		groups.GET("/:id", h.getByID)
		groups.PATCH("/:id", h.updateSettings)

		groups.POST("/:id/join", h.join)
		groups.POST("/:id/approve/:userID", h.approve)
		groups.POST("/:id/reject/:userID", h.reject)
		groups.GET("/:id/members", h.listMembers)
		groups.POST("/:id/members/email", h.addByEmail)
		groups.POST("/:id/bots", h.addBot)

		groups.POST("/:id/draw", h.runDraw)
		groups.GET("/:id/assignment", h.getAssignment)
	}
}

// @Summary Create a group
// @Description Creates a group with the caller as admin and sole member. A themed name is generated when none is given.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.GroupCreate true "Group settings"
// @Success 201 {object} models.Group
// @Failure 400 {object} middleware.ErrorResponse
// @Router /groups [post]
func (h *GroupHandler) create(c *gin.Context) {
	var input models.GroupCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid group payload"))
		return
	}

	group, err := h.service.Create(c.Request.Context(), middleware.UserIDFromContext(c), &input)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, group)
}

// @Summary List own groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Group
// @Router /groups/me [get]
func (h *GroupHandler) listMine(c *gin.Context) {
	groups, err := h.service.ListMine(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// @Summary List public groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Group
// @Router /groups/public [get]
func (h *GroupHandler) listPublic(c *gin.Context) {
	groups, err := h.service.ListPublic(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

// @Summary Get a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Success 200 {object} models.Group
// @Failure 404 {object} middleware.ErrorResponse
// @Router /groups/{id} [get]
func (h *GroupHandler) getByID(c *gin.Context) {
	group, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// @Summary Update group settings
// @Description Admin-only partial update of the group's settings
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Param input body models.GroupSettingsUpdate true "Fields to update"
// @Success 200 {object} models.Group
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id} [patch]
func (h *GroupHandler) updateSettings(c *gin.Context) {
	var update models.GroupSettingsUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid settings payload"))
		return
	}

	group, err := h.service.UpdateSettings(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), &update)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// @Summary Join a group
// @Description Joins the caller to the group, or queues an approval request when the group requires it. Idempotent.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Success 200 {object} models.JoinResult
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /groups/{id}/join [post]
func (h *GroupHandler) join(c *gin.Context) {
	result, err := h.service.Join(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Approve a pending member
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Param userID path string true "User id"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id}/approve/{userID} [post]
func (h *GroupHandler) approve(c *gin.Context) {
	err := h.service.Approve(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), c.Param("userID"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Reject a pending member
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Param userID path string true "User id"
// @Success 204
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id}/reject/{userID} [post]
func (h *GroupHandler) reject(c *gin.Context) {
	err := h.service.Reject(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), c.Param("userID"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary List group members
// @Description Returns member profiles in join order
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Success 200 {array} usermodels.User
// @Failure 404 {object} middleware.ErrorResponse
// @Router /groups/{id}/members [get]
func (h *GroupHandler) listMembers(c *gin.Context) {
	group, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	members, err := h.users.GetByIDs(c.Request.Context(), group.Members)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

type addByEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary Add a member by email
// @Description Admin-only. Adds the registered user with this email directly, or reports that an invite is needed.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Param input body addByEmailRequest true "Email"
// @Success 200 {object} models.AddByEmailResult
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id}/members/email [post]
func (h *GroupHandler) addByEmail(c *gin.Context) {
	var req addByEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid email payload"))
		return
	}

	result, err := h.service.AddMemberByEmail(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req.Email)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// @Summary Add a bot member
// @Description Admin-only. Creates a bot participant and adds it to the group.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Success 201 {object} usermodels.User
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id}/bots [post]
func (h *GroupHandler) addBot(c *gin.Context) {
	bot, err := h.service.AddBot(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bot)
}

// @Summary Run the draw
// @Description Admin-only. Shuffles members into a gift ring and commits the result.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Success 200 {object} models.Group
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /groups/{id}/draw [post]
func (h *GroupHandler) runDraw(c *gin.Context) {
	group, err := h.service.RunDraw(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// @Summary Get own assignment
// @Description Returns the profile of the member the caller drew
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path string true "Group id"
// @Success 200 {object} usermodels.User
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /groups/{id}/assignment [get]
func (h *GroupHandler) getAssignment(c *gin.Context) {
	recipientID, err := h.service.Assignment(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	recipient, err := h.users.GetByID(c.Request.Context(), recipientID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipient)
}
