package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

func (h *Handler) GetProfile(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	userID := e.QueryParam("user_id")
	if userID == "" {
		userID = UserIDFromContext(ctx)
	}

	profile, err := h.profile.GetProfile(ctx, userID)
	if err != nil {
		l.Warn("failed to get profile", zap.String("profile_id", userID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, profile)
}

// UpsertProfile always writes the caller's own profile.
func (h *Handler) UpsertProfile(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	profile := &model.Profile{}

	if err := decodeRequest(e, profile); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}
	profile.UserID = UserIDFromContext(ctx)

	stored, err := h.profile.UpsertProfile(ctx, profile)
	if err != nil {
		l.Error("failed to upsert profile", zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, stored)
}

func (h *Handler) GetOrganisation(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	orgID := e.QueryParam("org_id")

	org, err := h.organisation.GetOrganisation(ctx, orgID)
	if err != nil {
		l.Warn("failed to get organisation", zap.String("org_id", orgID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, org)
}

func (h *Handler) ListMyOrganisations(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	orgs, err := h.organisation.ListUserOrganisations(ctx, UserIDFromContext(ctx))
	if err != nil {
		l.Error("failed to list organisations", zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{"organisations": orgs})
}

func (h *Handler) ListOrganisationProjects(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	orgID := e.QueryParam("org_id")

	projects, err := h.organisation.ListProjects(ctx, orgID)
	if err != nil {
		l.Warn("failed to list projects", zap.String("org_id", orgID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{"org_id": orgID, "projects": projects})
}

func (h *Handler) ListOrganisationMembers(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	orgID := e.QueryParam("org_id")

	members, err := h.organisation.ListMembers(ctx, orgID)
	if err != nil {
		l.Warn("failed to list members", zap.String("org_id", orgID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, map[string]any{"org_id": orgID, "members": members})
}

func (h *Handler) JoinOrganisation(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	var req struct {
		OrgID           string `json:"org_id" validate:"required"`
		JoinAllProjects bool   `json:"join_all_projects"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	if err := h.organisation.JoinOrganisation(ctx, req.OrgID, UserIDFromContext(ctx), req.JoinAllProjects); err != nil {
		l.Error("failed to join organisation", zap.String("org_id", req.OrgID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) LeaveOrganisation(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	var req struct {
		OrgID string `json:"org_id" validate:"required"`
	}

	if err := decodeRequest(e, &req); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	if err := h.organisation.LeaveOrganisation(ctx, req.OrgID, UserIDFromContext(ctx)); err != nil {
		l.Warn("failed to leave organisation", zap.String("org_id", req.OrgID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.NoContent(http.StatusNoContent)
}

func (h *Handler) GetProject(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	projectID := e.QueryParam("project_id")

	project, err := h.project.GetProject(ctx, projectID)
	if err != nil {
		l.Warn("failed to get project", zap.String("project_id", projectID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusOK, project)
}

func (h *Handler) AddOrganisation(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	org := &model.Organisation{}

	if err := decodeRequest(e, org); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	created, err := h.organisation.CreateOrganisation(ctx, org)
	if err != nil {
		l.Error("failed to add organisation", zap.String("name", org.Name), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusCreated, created)
}

func (h *Handler) AddProject(e echo.Context) error {
	ctx := e.Request().Context()
	l := logger.FromContext(ctx)

	project := &model.Project{}

	if err := decodeRequest(e, project); err != nil {
		l.Warn("invalid request", zap.Any("error", err))
		return transportError(e, err)
	}

	created, err := h.project.CreateProject(ctx, project)
	if err != nil {
		l.Error("failed to add project", zap.String("org_id", project.OrganisationID), zap.Any("error", err))
		return transportError(e, err)
	}

	return e.JSON(http.StatusCreated, created)
}
