package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "kamba-santa-backend/internal/common/errors"
	"kamba-santa-backend/internal/common/middleware"
	"kamba-santa-backend/internal/features/user/models"
	"kamba-santa-backend/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("/me", h.getMe)
		users.PATCH("/me", h.updateMe)
		users.GET("/:id", h.getByID)
	}
}

// @Summary Get own profile
// @Description Returns the caller's profile, creating it on first login
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} middleware.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) getMe(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.NewUnauthorizedError("missing identity"))
		return
	}

	user, err := h.service.EnsureUser(c.Request.Context(), identity)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Update own profile
// @Description Applies a partial profile update (sizes, preferences, contacts)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body models.ProfileUpdate true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} middleware.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) updateMe(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "Invalid profile update"))
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.UserIDFromContext(c), &update)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Get a user profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Success 200 {object} models.User
// @Failure 404 {object} middleware.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) getByID(c *gin.Context) {
	user, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
