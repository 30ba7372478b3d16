package service

import (
	"context"
	"errors"

	"github.com/yakoovad/groupmatch/internal/db"
	"github.com/yakoovad/groupmatch/internal/matching"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/repository"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

// MatchService runs the join request workflow. For an ordered pair of groups (A, B):
//
//	no interest -> A requested -> matched -> resolved
//
// A request from A to B is stored until B asks for A as well (or B accepts it explicitly),
// at which point A's members are moved into B and both directional requests disappear.
// A match is never stored; it is derived from the request rows.
type MatchService struct {
	tx db.Transactor

	groups       repository.GroupRepository
	projects     repository.ProjectRepository
	joinRequests repository.JoinRequestRepository

	groupService *GroupService
	ledger       *CapacityLedger
	notifier     MatchNotifier
}

func NewMatchService(tx db.Transactor) *MatchService {
	return &MatchService{
		tx:       tx,
		notifier: Notifiers{},
	}
}

// SwipeRight records the viewer's interest in a candidate group. A viewer without a group
// (empty viewerGroupID) gets their existing group for the project, or a new group of one.
func (m *MatchService) SwipeRight(ctx context.Context, viewerGroupID, candidateGroupID, projectID, userID string) (*model.MatchOutcome, *Error) {
	l := logger.FromContext(ctx)
	l.Info("swipe right",
		zap.String("viewer_group_id", viewerGroupID),
		zap.String("candidate_group_id", candidateGroupID),
		zap.String("project_id", projectID),
		zap.String("user_id", userID))

	if viewerGroupID == "" {
		group, err := m.groupService.GetUserGroup(ctx, projectID, userID)
		if err != nil && err.Code == ErrorCodeNotFound {
			group, err = m.groupService.CreateGroup(ctx, projectID, userID)
		}
		if err != nil {
			l.Warn("failed to resolve viewer group", zap.String("user_id", userID), zap.Any("error", err))
			return nil, err
		}
		viewerGroupID = group.ID
	} else if err := m.groupService.RequireMember(ctx, viewerGroupID, userID); err != nil {
		l.Warn("swiping user is not in viewer group", zap.String("user_id", userID), zap.Any("error", err))
		return nil, err
	}

	return m.RequestToJoin(ctx, viewerGroupID, candidateGroupID, projectID, userID)
}

// RequestToJoin records that requester wants to join target. If target already asked for
// requester the pair is matched on the spot and target's request is accepted instead of
// storing a second row. Repeating a pending request is a no-op.
//
// The outcome is CAPACITY_CONFLICT, not an error, when the two groups together would not
// fit into the project. A conflicting request is only kept when target already asked for
// requester, so the pair stays matched.
func (m *MatchService) RequestToJoin(ctx context.Context, requesterGroupID, targetGroupID, projectID, userID string) (*model.MatchOutcome, *Error) {
	l := logger.FromContext(ctx)

	if requesterGroupID == targetGroupID {
		return nil, NewError(ErrorCodeInvalidRequest, "a group cannot request to join itself")
	}

	var (
		outcome    *model.MatchOutcome
		reciprocal bool
	)

	err := m.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		requester, target, project, err := m.pair(txCtx, requesterGroupID, targetGroupID, projectID)
		if err != nil {
			return err
		}

		_, repoErr := m.joinRequests.Get(txCtx, targetGroupID, requesterGroupID)
		switch {
		case repoErr == nil:
			reciprocal = true
		case !errors.Is(repoErr, repository.ErrNotFound):
			l.Error("failed to check reciprocal request", zap.Error(repoErr))
			return NewError(ErrorCodeStoreUnavailable, "failed to check join requests")
		}

		if !matching.HasCapacityFor(project.MaxGroupSize, target.MemberCount, requester.MemberCount) {
			l.Info("groups do not fit together",
				zap.Int("requester_size", requester.MemberCount),
				zap.Int("target_size", target.MemberCount),
				zap.Int("max_group_size", project.MaxGroupSize),
				zap.Bool("reciprocal", reciprocal))
			return NewError(ErrorCodeCapacityExceeded, "groups do not fit together")
		}

		if reciprocal {
			// target asked first, so accepting target's request moves target into requester.
			group, err := m.accept(txCtx, requesterGroupID, targetGroupID)
			if err != nil {
				return err
			}
			outcome = model.Matched(group)
			return nil
		}

		created, repoErr := m.joinRequests.Create(txCtx, &repository.JoinRequest{
			RequesterGroupID: requesterGroupID,
			TargetGroupID:    targetGroupID,
			ProjectID:        projectID,
			RequesterUserID:  userID,
		})
		if repoErr != nil {
			l.Error("failed to create join request", zap.Error(repoErr))
			return repoError(repoErr, "group not found", "failed to create join request")
		}
		if !created {
			l.Debug("join request already pending",
				zap.String("requester_group_id", requesterGroupID),
				zap.String("target_group_id", targetGroupID))
		}

		outcome = model.Pending()
		return nil
	})

	res := asError(err)
	if res != nil && res.Code == ErrorCodeCapacityExceeded {
		if reciprocal {
			m.keepInterest(ctx, requesterGroupID, targetGroupID, projectID, userID)
		}
		return model.CapacityConflict(), nil
	}
	if res != nil {
		return nil, res
	}

	if outcome.Status == model.MatchStatusMatched {
		m.notifier.OnMatchResolved(ctx, outcome.Group)
	}

	return outcome, nil
}

// IsMatch reports whether both groups have asked to join each other.
func (m *MatchService) IsMatch(ctx context.Context, groupA, groupB string) (bool, *Error) {
	l := logger.FromContext(ctx)

	for _, pair := range [][2]string{{groupA, groupB}, {groupB, groupA}} {
		_, err := m.joinRequests.Get(ctx, pair[0], pair[1])
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			l.Error("failed to get join request", zap.Strings("pair", pair[:]), zap.Error(err))
			return false, NewError(ErrorCodeStoreUnavailable, "failed to check join requests")
		}
	}
	return true, nil
}

// AcceptRequestToJoinGroup lets target accept a pending request of requester. requester's
// members move into target and the requester group is dissolved. On CAPACITY_CONFLICT
// nothing changes and the request stays pending.
func (m *MatchService) AcceptRequestToJoinGroup(ctx context.Context, targetGroupID, requesterGroupID string) (*model.MatchOutcome, *Error) {
	l := logger.FromContext(ctx)
	l.Info("accepting join request",
		zap.String("target_group_id", targetGroupID),
		zap.String("requester_group_id", requesterGroupID))

	var group *model.Group

	err := m.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var acceptErr *Error
		group, acceptErr = m.accept(txCtx, targetGroupID, requesterGroupID)
		if acceptErr != nil {
			return acceptErr
		}
		return nil
	})

	res := asError(err)
	if res != nil && res.Code == ErrorCodeCapacityExceeded {
		return model.CapacityConflict(), nil
	}
	if res != nil {
		return nil, res
	}

	m.notifier.OnMatchResolved(ctx, group)

	return model.Matched(group), nil
}

// accept must run inside a transaction. It requires a pending requester -> target request.
func (m *MatchService) accept(ctx context.Context, targetGroupID, requesterGroupID string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)

	if _, err := m.joinRequests.Get(ctx, requesterGroupID, targetGroupID); err != nil {
		return nil, repoError(err, "no pending join request", "failed to get join request")
	}

	target, err := m.groups.Get(ctx, targetGroupID)
	if err != nil {
		return nil, repoError(err, "group not found", "failed to get group")
	}

	project, err := m.projects.Get(ctx, target.ProjectID)
	if err != nil {
		return nil, repoError(err, "project not found", "failed to get project")
	}

	incoming, err := m.groups.GetMembers(ctx, requesterGroupID)
	if err != nil {
		return nil, repoError(err, "group not found", "failed to get group members")
	}

	if !matching.HasCapacityFor(project.MaxGroupSize, target.MemberCount, len(incoming)) {
		l.Info("target group is full",
			zap.String("target_group_id", targetGroupID),
			zap.Int("member_count", target.MemberCount),
			zap.Int("incoming", len(incoming)))
		return nil, NewError(ErrorCodeCapacityExceeded, "group does not have enough free slots")
	}

	if err = m.joinRequests.Delete(ctx, requesterGroupID, targetGroupID); err != nil {
		return nil, repoError(err, "no pending join request", "failed to delete join request")
	}
	if err = m.joinRequests.Delete(ctx, targetGroupID, requesterGroupID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to delete join request")
	}

	// The requester group is emptied by the merge; dropping it frees its members for target.
	if err = m.groups.Delete(ctx, requesterGroupID); err != nil {
		return nil, repoError(err, "group not found", "failed to dissolve requester group")
	}

	group, admitErr := m.ledger.Admit(ctx, targetGroupID, incoming)
	if admitErr != nil {
		return nil, admitErr
	}

	l.Info("groups merged",
		zap.String("group_id", group.ID),
		zap.String("dissolved_group_id", requesterGroupID),
		zap.Int("member_count", group.Size()))

	return group, nil
}

// pair loads both groups and their project and checks they belong together.
func (m *MatchService) pair(ctx context.Context, requesterGroupID, targetGroupID, projectID string) (*repository.Group, *repository.Group, *repository.Project, *Error) {
	project, err := m.projects.Get(ctx, projectID)
	if err != nil {
		return nil, nil, nil, repoError(err, "project not found", "failed to get project")
	}

	requester, err := m.groups.Get(ctx, requesterGroupID)
	if err != nil {
		return nil, nil, nil, repoError(err, "group not found", "failed to get group")
	}

	target, err := m.groups.Get(ctx, targetGroupID)
	if err != nil {
		return nil, nil, nil, repoError(err, "group not found", "failed to get group")
	}

	if requester.ProjectID != projectID || target.ProjectID != projectID {
		return nil, nil, nil, NewError(ErrorCodeInvalidRequest, "groups belong to different projects")
	}

	return requester, target, project, nil
}

// keepInterest stores requester's own request after a matched pair could not be merged,
// so the pair stays matched and can be retried once capacity frees up.
func (m *MatchService) keepInterest(ctx context.Context, requesterGroupID, targetGroupID, projectID, userID string) {
	_, err := m.joinRequests.Create(ctx, &repository.JoinRequest{
		RequesterGroupID: requesterGroupID,
		TargetGroupID:    targetGroupID,
		ProjectID:        projectID,
		RequesterUserID:  userID,
	})
	if err != nil {
		logger.FromContext(ctx).Warn("failed to keep join request after capacity conflict",
			zap.String("requester_group_id", requesterGroupID),
			zap.String("target_group_id", targetGroupID),
			zap.Error(err))
	}
}

func (m *MatchService) WithGroupRepo(r repository.GroupRepository) *MatchService {
	m.groups = r
	return m
}

func (m *MatchService) WithProjectRepo(r repository.ProjectRepository) *MatchService {
	m.projects = r
	return m
}

func (m *MatchService) WithJoinRequestRepo(r repository.JoinRequestRepository) *MatchService {
	m.joinRequests = r
	return m
}

func (m *MatchService) WithGroupService(g *GroupService) *MatchService {
	m.groupService = g
	return m
}

func (m *MatchService) WithCapacityLedger(c *CapacityLedger) *MatchService {
	m.ledger = c
	return m
}

func (m *MatchService) WithNotifier(n MatchNotifier) *MatchService {
	m.notifier = n
	return m
}
