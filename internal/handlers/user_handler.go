package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/models"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/repositories"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/services"
	"go.uber.org/zap"
)

// TokenIssuer signs a token for a newly created user
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService services.UserService
	tokens      TokenIssuer
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler. tokens may be nil, in which case
// no token is returned on creation.
func NewUserHandler(userService services.UserService, tokens TokenIssuer, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokens:      tokens,
		logger:      logger.Named("UserHandler"),
	}
}

// CreateUser handles POST /user
func (h *UserHandler) CreateUser(c *gin.Context) {
	var payload models.CreateUserPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), &payload)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": createErrorMessage(err)})
		return
	}

	resp := gin.H{"success": true, "data": user}
	if h.tokens != nil {
		token, err := h.tokens.Issue(user.ID)
		if err != nil {
			// The user is already stored; the client can obtain a token later
			h.logger.Error("Failed to issue token", zap.Int64("id", user.ID), zap.Error(err))
		} else {
			resp["token"] = token
		}
	}
	c.JSON(http.StatusCreated, resp)
}

// GetUser handles GET /user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid value provided for id: " + c.Param("id")})
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "user with id " + c.Param("id") + " not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "failed to get user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": user})
}

// ListUsers handles GET /users. Listing is not implemented yet.
func (h *UserHandler) ListUsers(c *gin.Context) {
	c.String(http.StatusOK, "Hello, users!")
}

func createErrorMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrAllocation):
		return "failed to allocate user id"
	case errors.Is(err, services.ErrPersist):
		return "failed to store user"
	default:
		return "failed to create user"
	}
}
