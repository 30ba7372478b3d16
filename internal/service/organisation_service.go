package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yakoovad/groupmatch/internal/db"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/repository"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

type OrganisationService struct {
	tx db.Transactor

	organisations repository.OrganisationRepository
	projects      repository.ProjectRepository
	profiles      repository.ProfileRepository
	groups        repository.GroupRepository

	groupService *GroupService
}

func NewOrganisationService(tx db.Transactor) *OrganisationService {
	return &OrganisationService{tx: tx}
}

func (o *OrganisationService) CreateOrganisation(ctx context.Context, org *model.Organisation) (*model.Organisation, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating organisation", zap.String("name", org.Name), zap.String("leader", org.Leader))

	repoOrg := &repository.Organisation{
		ID:          uuid.NewString(),
		Name:        org.Name,
		Subtitle:    org.Subtitle,
		Description: org.Description,
		Leader:      org.Leader,
	}
	if err := o.organisations.Create(ctx, repoOrg); err != nil {
		l.Warn("failed to create organisation", zap.Error(err))
		return nil, repoError(err, "leader profile not found", "failed to create organisation")
	}

	return toModelOrganisation(repoOrg), nil
}

func (o *OrganisationService) GetOrganisation(ctx context.Context, orgID string) (*model.Organisation, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting organisation", zap.String("org_id", orgID))

	repoOrg, err := o.organisations.Get(ctx, orgID)
	if err != nil {
		l.Warn("failed to get organisation", zap.String("org_id", orgID), zap.Error(err))
		return nil, repoError(err, "organisation not found", "failed to get organisation")
	}
	return toModelOrganisation(repoOrg), nil
}

// ListUserOrganisations returns the organisations userID leads or has joined.
func (o *OrganisationService) ListUserOrganisations(ctx context.Context, userID string) ([]*model.Organisation, *Error) {
	l := logger.FromContext(ctx)

	repoOrgs, err := o.organisations.ListByUser(ctx, userID)
	if err != nil {
		l.Error("failed to list organisations", zap.String("user_id", userID), zap.Error(err))
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to list organisations")
	}

	orgs := make([]*model.Organisation, 0, len(repoOrgs))
	for _, org := range repoOrgs {
		orgs = append(orgs, toModelOrganisation(org))
	}
	return orgs, nil
}

func (o *OrganisationService) ListProjects(ctx context.Context, orgID string) ([]*model.Project, *Error) {
	l := logger.FromContext(ctx)

	if _, err := o.organisations.Get(ctx, orgID); err != nil {
		return nil, repoError(err, "organisation not found", "failed to get organisation")
	}

	repoProjects, err := o.projects.ListByOrganisation(ctx, orgID)
	if err != nil {
		l.Error("failed to list projects", zap.String("org_id", orgID), zap.Error(err))
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to list projects")
	}

	projects := make([]*model.Project, 0, len(repoProjects))
	for _, p := range repoProjects {
		projects = append(projects, toModelProject(p))
	}
	return projects, nil
}

func (o *OrganisationService) ListMembers(ctx context.Context, orgID string) ([]*model.Profile, *Error) {
	l := logger.FromContext(ctx)

	if _, err := o.organisations.Get(ctx, orgID); err != nil {
		return nil, repoError(err, "organisation not found", "failed to get organisation")
	}

	repoProfiles, err := o.profiles.ListByOrganisation(ctx, orgID)
	if err != nil {
		l.Error("failed to list organisation members", zap.String("org_id", orgID), zap.Error(err))
		return nil, NewError(ErrorCodeStoreUnavailable, "failed to list organisation members")
	}

	members := make([]*model.Profile, 0, len(repoProfiles))
	for _, p := range repoProfiles {
		members = append(members, toModelProfile(p))
	}
	return members, nil
}

// JoinOrganisation adds userID to the organisation. With joinAllProjects the user also
// gets a group of one in every project of the organisation they are not grouped in yet.
func (o *OrganisationService) JoinOrganisation(ctx context.Context, orgID, userID string, joinAllProjects bool) *Error {
	l := logger.FromContext(ctx)
	l.Info("joining organisation",
		zap.String("org_id", orgID),
		zap.String("user_id", userID),
		zap.Bool("join_all_projects", joinAllProjects))

	err := o.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		err := o.organisations.AddMember(txCtx, orgID, userID)
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return NewError(ErrorCodeAlreadyExists, "user already joined the organisation")
		case err != nil:
			return repoError(err, "organisation or profile not found", "failed to join organisation")
		}

		if !joinAllProjects {
			return nil
		}

		projects, err := o.projects.ListByOrganisation(txCtx, orgID)
		if err != nil {
			l.Error("failed to list projects", zap.String("org_id", orgID), zap.Error(err))
			return NewError(ErrorCodeStoreUnavailable, "failed to list projects")
		}

		for _, project := range projects {
			_, err = o.groups.FindByUser(txCtx, project.ID, userID)
			if err == nil {
				continue
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeStoreUnavailable, "failed to find user group")
			}

			if _, createErr := o.groupService.CreateGroup(txCtx, project.ID, userID); createErr != nil {
				l.Error("failed to create group", zap.String("project_id", project.ID), zap.Any("error", createErr))
				return createErr
			}
		}

		return nil
	})

	return asError(err)
}

func (o *OrganisationService) LeaveOrganisation(ctx context.Context, orgID, userID string) *Error {
	l := logger.FromContext(ctx)
	l.Info("leaving organisation", zap.String("org_id", orgID), zap.String("user_id", userID))

	if err := o.organisations.RemoveMember(ctx, orgID, userID); err != nil {
		l.Warn("failed to leave organisation", zap.Error(err))
		return repoError(err, "user is not a member of the organisation", "failed to leave organisation")
	}
	return nil
}

func toModelOrganisation(o *repository.Organisation) *model.Organisation {
	return &model.Organisation{
		ID:          o.ID,
		Name:        o.Name,
		Subtitle:    o.Subtitle,
		Description: o.Description,
		Leader:      o.Leader,
		CreatedAt:   o.CreatedAt,
	}
}

func (o *OrganisationService) WithOrganisationRepo(r repository.OrganisationRepository) *OrganisationService {
	o.organisations = r
	return o
}

func (o *OrganisationService) WithProjectRepo(r repository.ProjectRepository) *OrganisationService {
	o.projects = r
	return o
}

func (o *OrganisationService) WithProfileRepo(r repository.ProfileRepository) *OrganisationService {
	o.profiles = r
	return o
}

func (o *OrganisationService) WithGroupRepo(r repository.GroupRepository) *OrganisationService {
	o.groups = r
	return o
}

func (o *OrganisationService) WithGroupService(g *GroupService) *OrganisationService {
	o.groupService = g
	return o
}
