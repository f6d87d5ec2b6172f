package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/anonto42/nano-midea/followers/internal/follows"
	"github.com/anonto42/nano-midea/followers/internal/middleware"
	"github.com/anonto42/nano-midea/followers/internal/models"
)

// FollowService is the follow protocol engine as seen by the HTTP layer.
type FollowService interface {
	Follow(ctx context.Context, actorID, targetID string) (*follows.Outcome, error)
	Unfollow(ctx context.Context, actorID, targetID string) (*follows.Outcome, error)
	CheckStatus(ctx context.Context, actorID, targetID string) (bool, error)
	ListFollowers(ctx context.Context, userID string) ([]models.FollowerEntry, error)
	ListFollowing(ctx context.Context, userID string) ([]models.FollowingEntry, error)
}

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	service FollowService
	logger  *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(service FollowService, logger *zap.Logger) *FollowHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FollowHandler{service: service, logger: logger}
}

// RegisterFollowRoutes registers follow-related routes on the /followers group.
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("", h.FollowUser)
	g.DELETE("/:target_userid", h.UnfollowUser)
	g.GET("/check/:target_userid", h.CheckFollowStatus)
	g.GET("/following/:user_id", h.GetFollowing)
	g.GET("/:user_id", h.GetFollowers)
}

// FollowUser follows the user named in the request body
func (h *FollowHandler) FollowUser(c echo.Context) error {
	var req models.FollowRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	// An empty target is reported by the service, after the identity check.
	req.TargetUserID = strings.TrimSpace(req.TargetUserID)
	if req.TargetUserID != "" {
		if err := c.Validate(&req); err != nil {
			return err
		}
	}

	if _, err := h.service.Follow(c.Request().Context(), middleware.UserID(c), req.TargetUserID); err != nil {
		return h.fail(c, "follow", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Successfully followed user"})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	if _, err := h.service.Unfollow(c.Request().Context(), middleware.UserID(c), c.Param("target_userid")); err != nil {
		return h.fail(c, "unfollow", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully unfollowed user"})
}

// CheckFollowStatus reports whether the caller follows a user
func (h *FollowHandler) CheckFollowStatus(c echo.Context) error {
	following, err := h.service.CheckStatus(c.Request().Context(), middleware.UserID(c), c.Param("target_userid"))
	if err != nil {
		return h.fail(c, "check", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"isFollowing": following})
}

// GetFollowers lists the users following a user
func (h *FollowHandler) GetFollowers(c echo.Context) error {
	followers, err := h.service.ListFollowers(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return h.fail(c, "list followers", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"followers": followers})
}

// GetFollowing lists the users a user follows
func (h *FollowHandler) GetFollowing(c echo.Context) error {
	following, err := h.service.ListFollowing(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return h.fail(c, "list following", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// fail maps an engine error to its stable status and message. Internal
// detail is logged and only counter sync detail reaches the caller.
func (h *FollowHandler) fail(c echo.Context, op string, err error) error {
	appErr := follows.AsError(err)
	status := StatusFor(appErr.Kind)

	switch appErr.Kind {
	case follows.KindStoreUnavailable, follows.KindUnknown:
		h.logger.Error("follow request failed", zap.String("op", op), zap.Error(err))
	case follows.KindCounterSyncFailed:
		h.logger.Warn("follow committed with counter drift", zap.String("op", op), zap.Error(err))
	}
	return echo.NewHTTPError(status, appErr.Message)
}

// StatusFor returns the HTTP status for an engine error kind.
func StatusFor(kind follows.Kind) int {
	switch kind {
	case follows.KindMissingIdentity:
		return http.StatusUnauthorized
	case follows.KindMissingTarget, follows.KindSelfReference,
		follows.KindAlreadyFollowing, follows.KindNotFollowing:
		return http.StatusBadRequest
	case follows.KindCounterSyncFailed:
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}
