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

// maxAdmitAttempts bounds how often Admit re-reads a group after losing a
// compare-and-set race before giving up.
const maxAdmitAttempts = 3

// CapacityLedger owns group membership writes. Every admission is a compare-and-set on
// the group's member count, so concurrent admissions can never overshoot max_group_size.
type CapacityLedger struct {
	tx db.Transactor

	groups   repository.GroupRepository
	projects repository.ProjectRepository
	profiles repository.ProfileRepository
}

func NewCapacityLedger(tx db.Transactor) *CapacityLedger {
	return &CapacityLedger{tx: tx}
}

func (c *CapacityLedger) RemainingSlots(ctx context.Context, groupID, projectID string) (int, *Error) {
	l := logger.FromContext(ctx)

	project, err := c.projects.Get(ctx, projectID)
	if err != nil {
		l.Warn("failed to get project", zap.String("project_id", projectID), zap.Error(err))
		return 0, repoError(err, "project not found", "failed to get project")
	}

	group, err := c.groups.Get(ctx, groupID)
	if err != nil {
		l.Warn("failed to get group", zap.String("group_id", groupID), zap.Error(err))
		return 0, repoError(err, "group not found", "failed to get group")
	}

	if group.ProjectID != projectID {
		l.Warn("group belongs to another project",
			zap.String("group_id", groupID),
			zap.String("group_project_id", group.ProjectID),
			zap.String("project_id", projectID))
		return 0, NewError(ErrorCodeInvalidRequest, "group does not belong to project")
	}

	return matching.RemainingSlots(project.MaxGroupSize, group.MemberCount), nil
}

func (c *CapacityLedger) HasCapacityFor(ctx context.Context, groupID, projectID string, incoming int) (bool, *Error) {
	remaining, err := c.RemainingSlots(ctx, groupID, projectID)
	if err != nil {
		return false, err
	}
	return incoming <= remaining, nil
}

// Admit appends newMembers to the group, all or nothing. It fails with CAPACITY_EXCEEDED
// when the group cannot take all of them.
func (c *CapacityLedger) Admit(ctx context.Context, groupID string, newMembers []string) (*model.Group, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("admitting members", zap.String("group_id", groupID), zap.Strings("user_ids", newMembers))

	var admitted *model.Group

	err := c.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		for attempt := 1; ; attempt++ {
			group, err := c.groups.Get(txCtx, groupID)
			if err != nil {
				l.Warn("failed to get group", zap.String("group_id", groupID), zap.Error(err))
				return repoError(err, "group not found", "failed to get group")
			}

			project, err := c.projects.Get(txCtx, group.ProjectID)
			if err != nil {
				l.Error("failed to get project of group", zap.String("group_id", groupID), zap.Error(err))
				return repoError(err, "project not found", "failed to get project")
			}

			if !matching.HasCapacityFor(project.MaxGroupSize, group.MemberCount, len(newMembers)) {
				l.Warn("group is full",
					zap.String("group_id", groupID),
					zap.Int("member_count", group.MemberCount),
					zap.Int("incoming", len(newMembers)),
					zap.Int("max_group_size", project.MaxGroupSize))
				return NewError(ErrorCodeCapacityExceeded, "group does not have enough free slots")
			}

			err = c.groups.CompareAndSetMemberCount(txCtx, groupID, group.MemberCount, group.MemberCount+len(newMembers))
			if errors.Is(err, repository.ErrConflict) {
				if attempt < maxAdmitAttempts {
					l.Debug("member count changed concurrently, retrying",
						zap.String("group_id", groupID), zap.Int("attempt", attempt))
					continue
				}
				l.Warn("gave up admitting after concurrent updates", zap.String("group_id", groupID))
				return NewError(ErrorCodeCapacityExceeded, "group membership changed concurrently")
			}
			if err != nil {
				l.Error("failed to update member count", zap.String("group_id", groupID), zap.Error(err))
				return NewError(ErrorCodeStoreUnavailable, "failed to update group")
			}

			err = c.groups.AddMembers(txCtx, groupID, group.ProjectID, newMembers)
			switch {
			case errors.Is(err, repository.ErrAlreadyExists):
				return NewError(ErrorCodeAlreadyExists, "user already belongs to a group of this project")
			case errors.Is(err, repository.ErrNotFound):
				return NewError(ErrorCodeNotFound, "profile not found")
			case err != nil:
				l.Error("failed to add members", zap.String("group_id", groupID), zap.Error(err))
				return NewError(ErrorCodeStoreUnavailable, "failed to add members")
			}

			var loadErr *Error
			admitted, loadErr = loadGroup(txCtx, c.groups, c.profiles, groupID)
			if loadErr != nil {
				return loadErr
			}
			return nil
		}
	})
	if res := asError(err); res != nil {
		return nil, res
	}

	l.Debug("members admitted", zap.String("group_id", groupID), zap.Int("member_count", admitted.Size()))

	return admitted, nil
}

func (c *CapacityLedger) WithGroupRepo(r repository.GroupRepository) *CapacityLedger {
	c.groups = r
	return c
}

func (c *CapacityLedger) WithProjectRepo(r repository.ProjectRepository) *CapacityLedger {
	c.projects = r
	return c
}

func (c *CapacityLedger) WithProfileRepo(r repository.ProfileRepository) *CapacityLedger {
	c.profiles = r
	return c
}
