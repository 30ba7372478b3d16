package service

import (
	"context"
	"iter"

	"github.com/yakoovad/groupmatch/internal/matching"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/repository"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

// FeedService produces the swipeable candidate groups for a viewer. It never writes.
type FeedService struct {
	groups       repository.GroupRepository
	projects     repository.ProjectRepository
	profiles     repository.ProfileRepository
	joinRequests repository.JoinRequestRepository
}

func NewFeedService() *FeedService {
	return &FeedService{}
}

// NextCandidates returns the candidate groups of the project the viewer group may swipe on,
// in group creation order. The project is read once per call; the returned sequence
// filters that snapshot lazily and can be ranged over any number of times.
//
// An empty viewerGroupID stands for a user without a group, treated as a group of one.
func (f *FeedService) NextCandidates(
	ctx context.Context,
	viewerGroupID, projectID string,
	criteria model.FilterCriteria,
) (iter.Seq[*model.CandidateGroup], *Error) {
	l := logger.FromContext(ctx)
	l.Debug("building feed",
		zap.String("viewer_group_id", viewerGroupID),
		zap.String("project_id", projectID),
		zap.Any("criteria", criteria))

	if err := matching.ValidateCriteria(criteria); err != nil {
		l.Warn("invalid filter criteria", zap.Error(err))
		return nil, NewError(ErrorCodeInvalidCriteria, err.Error())
	}

	project, err := f.projects.Get(ctx, projectID)
	if err != nil {
		l.Warn("failed to get project", zap.String("project_id", projectID), zap.Error(err))
		return nil, repoError(err, "project not found", "failed to get project")
	}

	excluded, viewerSize, svcErr := f.viewer(ctx, viewerGroupID, projectID)
	if svcErr != nil {
		return nil, svcErr
	}

	groups, svcErr := f.projectGroups(ctx, projectID)
	if svcErr != nil {
		return nil, svcErr
	}

	fits := matching.RemainingSlots(project.MaxGroupSize, viewerSize)

	return func(yield func(*model.CandidateGroup) bool) {
		for _, g := range groups {
			if _, skip := excluded[g.ID]; skip || g.Size() == 0 {
				continue
			}
			// Capacity and the exact member count filter are independent; both apply.
			if g.Size() > fits || !matching.Matches(g, criteria) {
				continue
			}
			candidate := &model.CandidateGroup{
				Group:          g,
				RemainingSlots: matching.RemainingSlots(project.MaxGroupSize, g.Size()),
			}
			if !yield(candidate) {
				return
			}
		}
	}, nil
}

// viewer returns the group ids the viewer must not be offered and the viewer's size.
func (f *FeedService) viewer(ctx context.Context, viewerGroupID, projectID string) (map[string]struct{}, int, *Error) {
	l := logger.FromContext(ctx)

	if viewerGroupID == "" {
		return map[string]struct{}{}, 1, nil
	}

	group, err := f.groups.Get(ctx, viewerGroupID)
	if err != nil {
		l.Warn("failed to get viewer group", zap.String("group_id", viewerGroupID), zap.Error(err))
		return nil, 0, repoError(err, "group not found", "failed to get group")
	}
	if group.ProjectID != projectID {
		return nil, 0, NewError(ErrorCodeInvalidRequest, "group does not belong to the project")
	}

	pending, err := f.joinRequests.ListByRequester(ctx, viewerGroupID)
	if err != nil {
		l.Error("failed to list pending requests", zap.String("group_id", viewerGroupID), zap.Error(err))
		return nil, 0, NewError(ErrorCodeStoreUnavailable, "failed to list pending requests")
	}

	excluded := make(map[string]struct{}, len(pending)+1)
	excluded[viewerGroupID] = struct{}{}
	for _, r := range pending {
		excluded[r.TargetGroupID] = struct{}{}
	}

	// A transient empty group still occupies the viewer's own slot.
	return excluded, max(group.MemberCount, 1), nil
}

// projectGroups loads every group of the project with member profiles, in creation order.
func (f *FeedService) projectGroups(ctx context.Context, projectID string) ([]*model.Group, *Error) {
	l := logger.FromContext(ctx)

	repoGroups, err := f.groups.ListByProject(ctx, projectID)
	if err != nil {
		l.Error("failed to list groups", zap.String("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to list groups")
	}

	members, err := f.groups.ListMembersByProject(ctx, projectID)
	if err != nil {
		l.Error("failed to list group members", zap.String("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to list group members")
	}

	repoProfiles, err := f.profiles.ListByProject(ctx, projectID)
	if err != nil {
		l.Error("failed to list member profiles", zap.String("project_id", projectID), zap.Error(err))
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to list member profiles")
	}

	profiles := make(map[string]*model.Profile, len(repoProfiles))
	for _, p := range repoProfiles {
		profiles[p.UserID] = toModelProfile(p)
	}

	groups := make([]*model.Group, 0, len(repoGroups))
	byID := make(map[string]*model.Group, len(repoGroups))
	for _, rg := range repoGroups {
		g := &model.Group{ID: rg.ID, ProjectID: rg.ProjectID, Members: []*model.Profile{}, CreatedAt: rg.CreatedAt}
		groups = append(groups, g)
		byID[g.ID] = g
	}

	for _, m := range members {
		g, ok := byID[m.GroupID]
		if !ok {
			continue
		}
		if p, ok := profiles[m.UserID]; ok {
			g.Members = append(g.Members, p)
		}
	}

	return groups, nil
}

func (f *FeedService) WithGroupRepo(r repository.GroupRepository) *FeedService {
	f.groups = r
	return f
}

func (f *FeedService) WithProjectRepo(r repository.ProjectRepository) *FeedService {
	f.projects = r
	return f
}

func (f *FeedService) WithProfileRepo(r repository.ProfileRepository) *FeedService {
	f.profiles = r
	return f
}

func (f *FeedService) WithJoinRequestRepo(r repository.JoinRequestRepository) *FeedService {
	f.joinRequests = r
	return f
}
