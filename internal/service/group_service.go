package service

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/yakoovad/groupmatch/internal/db"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/repository"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

type GroupService struct {
	tx db.Transactor

	groups       repository.GroupRepository
	projects     repository.ProjectRepository
	profiles     repository.ProfileRepository
	joinRequests repository.JoinRequestRepository

	ledger *CapacityLedger
}

func NewGroupService(tx db.Transactor) *GroupService {
	return &GroupService{tx: tx}
}

func (g *GroupService) GetGroup(ctx context.Context, groupID string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting group", zap.String("group_id", groupID))

	group, err := loadGroup(ctx, g.groups, g.profiles, groupID)
	if err != nil {
		l.Warn("failed to get group", zap.String("group_id", groupID), zap.Any("error", err))
		return nil, err
	}
	return group, nil
}

// GetUserGroup returns the group userID belongs to in the project.
func (g *GroupService) GetUserGroup(ctx context.Context, projectID, userID string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)

	repoGroup, err := g.groups.FindByUser(ctx, projectID, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			l.Error("failed to find user group", zap.String("project_id", projectID), zap.String("user_id", userID), zap.Error(err))
		}
		return nil, repoError(err, "user has no group in this project", "failed to find user group")
	}

	return loadGroup(ctx, g.groups, g.profiles, repoGroup.ID)
}

// CreateGroup starts a new group for the project with userID as its only member.
func (g *GroupService) CreateGroup(ctx context.Context, projectID, userID string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating group", zap.String("project_id", projectID), zap.String("user_id", userID))

	var group *model.Group

	err := g.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := g.projects.Get(txCtx, projectID); err != nil {
			return repoError(err, "project not found", "failed to get project")
		}

		_, err := g.groups.FindByUser(txCtx, projectID, userID)
		switch {
		case err == nil:
			return NewError(ErrorCodeAlreadyExists, "user already belongs to a group of this project")
		case !errors.Is(err, repository.ErrNotFound):
			l.Error("failed to find user group", zap.String("project_id", projectID), zap.Error(err))
			return NewError(ErrorCodeStoreUnavailable, "failed to find user group")
		}

		repoGroup := &repository.Group{ID: uuid.NewString(), ProjectID: projectID}
		if err = g.groups.Create(txCtx, repoGroup); err != nil {
			l.Error("failed to create group", zap.String("project_id", projectID), zap.Error(err))
			return repoError(err, "project not found", "failed to create group")
		}

		var admitErr *Error
		group, admitErr = g.ledger.Admit(txCtx, repoGroup.ID, []string{userID})
		if admitErr != nil {
			return admitErr
		}
		return nil
	})
	if res := asError(err); res != nil {
		return nil, res
	}

	l.Debug("group created", zap.String("group_id", group.ID))

	return group, nil
}

// RequireMember fails with FORBIDDEN unless userID is a member of the group.
func (g *GroupService) RequireMember(ctx context.Context, groupID, userID string) *Error {
	members, err := g.groups.GetMembers(ctx, groupID)
	if err != nil {
		return repoError(err, "group not found", "failed to get group members")
	}
	if len(members) == 0 {
		return NewError(ErrorCodeNotFound, "group not found")
	}
	if !slices.Contains(members, userID) {
		return NewError(ErrorCodeForbidden, "user is not a member of the group")
	}
	return nil
}

// ListIncomingRequests returns the pending requests other groups made to join groupID.
func (g *GroupService) ListIncomingRequests(ctx context.Context, groupID string) ([]*model.JoinRequest, *Error) {
	l := logger.FromContext(ctx)

	repoRequests, err := g.joinRequests.ListByTarget(ctx, groupID)
	if err != nil {
		l.Error("failed to list join requests", zap.String("group_id", groupID), zap.Error(err))
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to list join requests")
	}

	requests := make([]*model.JoinRequest, 0, len(repoRequests))
	for _, r := range repoRequests {
		requests = append(requests, toModelJoinRequest(r))
	}
	return requests, nil
}

// loadGroup reads a group with its member profiles in join order.
func loadGroup(ctx context.Context, groups repository.GroupRepository, profiles repository.ProfileRepository, groupID string) (*model.Group, *Error) {
	repoGroup, err := groups.Get(ctx, groupID)
	if err != nil {
		return nil, repoError(err, "group not found", "failed to get group")
	}

	memberIDs, err := groups.GetMembers(ctx, groupID)
	if err != nil {
		return nil, repoError(err, "group not found", "failed to get group members")
	}

	repoProfiles, err := profiles.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, repoError(err, "group not found", "failed to get member profiles")
	}

	byID := make(map[string]*repository.Profile, len(repoProfiles))
	for _, p := range repoProfiles {
		byID[p.UserID] = p
	}

	group := &model.Group{
		ID:        repoGroup.ID,
		ProjectID: repoGroup.ProjectID,
		Members:   make([]*model.Profile, 0, len(memberIDs)),
		CreatedAt: repoGroup.CreatedAt,
	}
	for _, id := range memberIDs {
		if p, ok := byID[id]; ok {
			group.Members = append(group.Members, toModelProfile(p))
		}
	}

	return group, nil
}

func toModelProfile(p *repository.Profile) *model.Profile {
	return &model.Profile{
		UserID:    p.UserID,
		Username:  p.Username,
		Bio:       p.Bio,
		Skills:    p.Skills,
		Languages: p.Languages,
	}
}

func toModelJoinRequest(r *repository.JoinRequest) *model.JoinRequest {
	return &model.JoinRequest{
		RequesterGroupID: r.RequesterGroupID,
		TargetGroupID:    r.TargetGroupID,
		ProjectID:        r.ProjectID,
		RequesterUserID:  r.RequesterUserID,
		CreatedAt:        r.CreatedAt,
	}
}

func (g *GroupService) WithGroupRepo(r repository.GroupRepository) *GroupService {
	g.groups = r
	return g
}

func (g *GroupService) WithProjectRepo(r repository.ProjectRepository) *GroupService {
	g.projects = r
	return g
}

func (g *GroupService) WithProfileRepo(r repository.ProfileRepository) *GroupService {
	g.profiles = r
	return g
}

func (g *GroupService) WithJoinRequestRepo(r repository.JoinRequestRepository) *GroupService {
	g.joinRequests = r
	return g
}

func (g *GroupService) WithCapacityLedger(c *CapacityLedger) *GroupService {
	g.ledger = c
	return g
}
