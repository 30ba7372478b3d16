package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/service"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

const defaultFeedLimit = 20

func (h *Handler) GetFeed(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	var req struct {
		ProjectID string               `json:"project_id" validate:"required"`
		GroupID   string               `json:"group_id"`
		Filter    model.FilterCriteria `json:"filter"`
		Limit     int                  `json:"limit" validate:"gte=0,lte=100"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	userID := UserIDFromContext(ctx)
	viewerGroupID, err := h.viewerGroup(e, req.GroupID, req.ProjectID, userID)
	if err != nil {
		return transportError(e, err)
	}

	l.Info("getting feed",
		zap.String("project_id", req.ProjectID),
		zap.String("viewer_group_id", viewerGroupID))

	candidates, err := h.feed.NextCandidates(ctx, viewerGroupID, req.ProjectID, req.Filter)
	if err != nil {
		l.Error("failed to get feed", zap.String("project_id", req.ProjectID), zap.Any("error", err))
		return transportError(e, err)
	}

	limit := req.Limit
	if limit == 0 {
		limit = defaultFeedLimit
	}

	page := make([]*model.CandidateGroup, 0, limit)
	for c := range candidates {
		page = append(page, c)
		if len(page) == limit {
			break
		}
	}

	return e.JSON(http.StatusOK, map[string]any{
		"viewer_group_id": viewerGroupID,
		"candidates":      page,
	})
}

// viewerGroup checks the caller belongs to groupID, or looks up the caller's group when
// groupID is empty. A caller without a group gets an empty id.
func (h *Handler) viewerGroup(e echo.Context, groupID, projectID, userID string) (string, *service.Error) {
	ctx := e.Request().Context()

	if groupID != "" {
		if err := h.group.RequireMember(ctx, groupID, userID); err != nil {
			return "", err
		}
		return groupID, nil
	}

	group, err := h.group.GetUserGroup(ctx, projectID, userID)
	switch {
	case err == nil:
		return group.ID, nil
	case err.Code == service.ErrorCodeNotFound:
		return "", nil
	default:
		return "", err
	}
}

func (h *Handler) SwipeRight(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	var req struct {
		ProjectID        string `json:"project_id" validate:"required"`
		GroupID          string `json:"group_id"`
		CandidateGroupID string `json:"candidate_group_id" validate:"required"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	outcome, err := h.match.SwipeRight(ctx, req.GroupID, req.CandidateGroupID, req.ProjectID, UserIDFromContext(ctx))
	if err != nil {
		l.Error("failed to swipe",
			zap.String("candidate_group_id", req.CandidateGroupID),
			zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, outcome)
}

func (h *Handler) GetRemainingSlots(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	groupID := e.QueryParam("group_id")
	projectID := e.QueryParam("project_id")

	remaining, err := h.ledger.RemainingSlots(ctx, groupID, projectID)
	if err != nil {
		l.Warn("failed to get remaining slots", zap.String("group_id", groupID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"group_id":        groupID,
		"project_id":      projectID,
		"remaining_slots": remaining,
	})
}

func (h *Handler) IsMatch(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	groupID := e.QueryParam("group_id")
	otherGroupID := e.QueryParam("other_group_id")

	matched, err := h.match.IsMatch(ctx, groupID, otherGroupID)
	if err != nil {
		l.Error("failed to check match", zap.String("group_id", groupID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"group_id":       groupID,
		"other_group_id": otherGroupID,
		"is_match":       matched,
	})
}

func (h *Handler) GetMyGroup(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	projectID := e.QueryParam("project_id")

	group, err := h.group.GetUserGroup(ctx, projectID, UserIDFromContext(ctx))
	if err != nil {
		l.Warn("failed to get group", zap.String("project_id", projectID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, group)
}

func (h *Handler) ListJoinRequests(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	groupID := e.QueryParam("group_id")

	if err := h.group.RequireMember(ctx, groupID, UserIDFromContext(ctx)); err != nil {
		return transportError(e, err)
	}

	requests, err := h.group.ListIncomingRequests(ctx, groupID)
	if err != nil {
		l.Error("failed to list join requests", zap.String("group_id", groupID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"group_id": groupID,
		"requests": requests,
	})
}

func (h *Handler) AcceptJoinRequest(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	var req struct {
		GroupID          string `json:"group_id" validate:"required"`
		RequesterGroupID string `json:"requester_group_id" validate:"required"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	if err := h.group.RequireMember(ctx, req.GroupID, UserIDFromContext(ctx)); err != nil {
		return transportError(e, err)
	}

	outcome, err := h.match.AcceptRequestToJoinGroup(ctx, req.GroupID, req.RequesterGroupID)
	if err != nil {
		l.Error("failed to accept join request",
			zap.String("group_id", req.GroupID),
			zap.String("requester_group_id", req.RequesterGroupID),
			zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, outcome)
}

func (h *Handler) CreateGroup(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	var req struct {
		ProjectID string `json:"project_id" validate:"required"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	group, err := h.group.CreateGroup(ctx, req.ProjectID, UserIDFromContext(ctx))
	if err != nil {
		l.Error("failed to create group", zap.String("project_id", req.ProjectID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusCreated, group)
}
