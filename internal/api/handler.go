package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/yakoovad/groupmatch/internal/auth"
	"github.com/yakoovad/groupmatch/internal/service"
	"go.uber.org/zap"
)

type Handler struct {
	feed          *service.FeedService
	match         *service.MatchService
	group         *service.GroupService
	ledger        *service.CapacityLedger
	project       *service.ProjectService
	profile       *service.ProfileService
	organisation  *service.OrganisationService
	tokens        *auth.TokenManager
	healthChecker HealthChecker

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	userSecurity := e.Group("", AuthMiddleware(h.tokens, auth.TokenTypeUser, auth.TokenTypeAdmin))

	userSecurity.POST("/feed/get", h.GetFeed)
	userSecurity.POST("/swipe/right", h.SwipeRight)

	userSecurity.GET("/groups/remainingSlots", h.GetRemainingSlots)
	userSecurity.GET("/groups/isMatch", h.IsMatch)
	userSecurity.GET("/groups/mine", h.GetMyGroup)
	userSecurity.GET("/groups/requests", h.ListJoinRequests)
	userSecurity.POST("/groups/accept", h.AcceptJoinRequest)
	userSecurity.POST("/groups/create", h.CreateGroup)

	userSecurity.GET("/profiles/get", h.GetProfile)
	userSecurity.POST("/profiles/upsert", h.UpsertProfile)

	userSecurity.GET("/organisations/get", h.GetOrganisation)
	userSecurity.GET("/organisations/mine", h.ListMyOrganisations)
	userSecurity.GET("/organisations/projects", h.ListOrganisationProjects)
	userSecurity.GET("/organisations/members", h.ListOrganisationMembers)
	userSecurity.POST("/organisations/join", h.JoinOrganisation)
	userSecurity.POST("/organisations/leave", h.LeaveOrganisation)

	userSecurity.GET("/projects/get", h.GetProject)

	adminSecurity := e.Group("", AuthMiddleware(h.tokens, auth.TokenTypeAdmin))

	adminSecurity.POST("/organisations/add", h.AddOrganisation)
	adminSecurity.POST("/projects/add", h.AddProject)
}

func transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeCapacityExceeded, service.ErrorCodeAlreadyExists:
		return e.JSON(http.StatusConflict, response)
	case service.ErrorCodeInvalidBody, service.ErrorCodeInvalidRequest, service.ErrorCodeInvalidCriteria:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeUnauthorized:
		return e.JSON(http.StatusUnauthorized, response)
	case service.ErrorCodeForbidden:
		return e.JSON(http.StatusForbidden, response)
	case service.ErrorCodeStoreUnavailable:
		return e.JSON(http.StatusServiceUnavailable, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithTokenManager(t *auth.TokenManager) *Handler {
	h.tokens = t
	return h
}

func (h *Handler) WithFeedService(f *service.FeedService) *Handler {
	h.feed = f
	return h
}

func (h *Handler) WithMatchService(m *service.MatchService) *Handler {
	h.match = m
	return h
}

func (h *Handler) WithGroupService(g *service.GroupService) *Handler {
	h.group = g
	return h
}

func (h *Handler) WithCapacityLedger(c *service.CapacityLedger) *Handler {
	h.ledger = c
	return h
}

func (h *Handler) WithProjectService(p *service.ProjectService) *Handler {
	h.project = p
	return h
}

func (h *Handler) WithProfileService(p *service.ProfileService) *Handler {
	h.profile = p
	return h
}

func (h *Handler) WithOrganisationService(o *service.OrganisationService) *Handler {
	h.organisation = o
	return h
}
