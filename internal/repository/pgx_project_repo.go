package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/groupmatch/internal/db"
)

type Project struct {
	ID             string    `db:"project_id"`
	OrganisationID string    `db:"org_id"`
	Name           string    `db:"name"`
	Description    string    `db:"description"`
	MinGroupSize   int       `db:"min_group_size"`
	MaxGroupSize   int       `db:"max_group_size"`
	CreatedAt      time.Time `db:"created_at"`
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	Get(ctx context.Context, projectID string) (*Project, error)
	ListByOrganisation(ctx context.Context, orgID string) ([]*Project, error)
}

type pgxProjectRepository struct {
	pool *pgxpool.Pool
}

func NewPgxProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgxProjectRepository{pool: pool}
}

var projectColumns = []any{"project_id", "org_id", "name", "description", "min_group_size", "max_group_size", "created_at"}

func scanProject(row pgx.Row) (*Project, error) {
	pr := &Project{}
	if err := row.Scan(
		&pr.ID,
		&pr.OrganisationID,
		&pr.Name,
		&pr.Description,
		&pr.MinGroupSize,
		&pr.MaxGroupSize,
		&pr.CreatedAt,
	); err != nil {
		return nil, err
	}
	return pr, nil
}

// Create inserts the project and fills in CreatedAt. Sizes violating the table checks
// come back as ErrConflict, an unknown organisation as ErrNotFound.
func (p *pgxProjectRepository) Create(ctx context.Context, project *Project) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("projects", "project_id", "org_id", "name", "description", "min_group_size", "max_group_size"),
		im.Values(
			psql.Arg(project.ID),
			psql.Arg(project.OrganisationID),
			psql.Arg(project.Name),
			psql.Arg(project.Description),
			psql.Arg(project.MinGroupSize),
			psql.Arg(project.MaxGroupSize),
		),
		im.Returning(projectColumns...),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	created, err := scanProject(e.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}

	*project = *created
	return nil
}

func (p *pgxProjectRepository) Get(ctx context.Context, projectID string) (*Project, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(projectColumns...),
		sm.From("projects"),
		sm.Where(psql.Quote("project_id").EQ(psql.Arg(projectID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	pr, err := scanProject(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return pr, err
}

func (p *pgxProjectRepository) ListByOrganisation(ctx context.Context, orgID string) ([]*Project, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(projectColumns...),
		sm.From("projects"),
		sm.Where(psql.Quote("org_id").EQ(psql.Arg(orgID))),
		sm.OrderBy("created_at").Asc(),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Project, error) {
		return scanProject(row)
	})
}
