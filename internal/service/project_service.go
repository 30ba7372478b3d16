package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/repository"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

type ProjectService struct {
	projects repository.ProjectRepository
}

func NewProjectService() *ProjectService {
	return &ProjectService{}
}

// CreateProject validates the group size bounds and stores the project. Sizes cannot be
// changed afterwards.
func (p *ProjectService) CreateProject(ctx context.Context, project *model.Project) (*model.Project, *Error) {
	l := logger.FromContext(ctx)
	l.Info("creating project", zap.String("org_id", project.OrganisationID), zap.String("name", project.Name))

	if project.MinGroupSize <= 0 || project.MinGroupSize > project.MaxGroupSize {
		l.Warn("invalid group size bounds",
			zap.Int("min_group_size", project.MinGroupSize),
			zap.Int("max_group_size", project.MaxGroupSize))
		return nil, NewError(ErrorCodeInvalidRequest, "group sizes must satisfy 0 < min_group_size <= max_group_size")
	}

	repoProject := &repository.Project{
		ID:             uuid.NewString(),
		OrganisationID: project.OrganisationID,
		Name:           project.Name,
		Description:    project.Description,
		MinGroupSize:   project.MinGroupSize,
		MaxGroupSize:   project.MaxGroupSize,
	}
	if err := p.projects.Create(ctx, repoProject); err != nil {
		l.Warn("failed to create project", zap.Error(err))
		return nil, repoError(err, "organisation not found", "failed to create project")
	}

	return toModelProject(repoProject), nil
}

func (p *ProjectService) GetProject(ctx context.Context, projectID string) (*model.Project, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting project", zap.String("project_id", projectID))

	repoProject, err := p.projects.Get(ctx, projectID)
	if err != nil {
		l.Warn("failed to get project", zap.String("project_id", projectID), zap.Error(err))
		return nil, repoError(err, "project not found", "failed to get project")
	}

	return toModelProject(repoProject), nil
}

func toModelProject(p *repository.Project) *model.Project {
	return &model.Project{
		ID:             p.ID,
		OrganisationID: p.OrganisationID,
		Name:           p.Name,
		Description:    p.Description,
		MinGroupSize:   p.MinGroupSize,
		MaxGroupSize:   p.MaxGroupSize,
		CreatedAt:      p.CreatedAt,
	}
}

func (p *ProjectService) WithProjectRepo(r repository.ProjectRepository) *ProjectService {
	p.projects = r
	return p
}
