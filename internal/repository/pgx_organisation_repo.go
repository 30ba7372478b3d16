package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/groupmatch/internal/db"
)

type Organisation struct {
	ID          string    `db:"org_id"`
	Name        string    `db:"name"`
	Subtitle    string    `db:"subtitle"`
	Description string    `db:"description"`
	Leader      string    `db:"leader"`
	CreatedAt   time.Time `db:"created_at"`
}

type OrganisationRepository interface {
	Create(ctx context.Context, org *Organisation) error
	Get(ctx context.Context, orgID string) (*Organisation, error)
	// ListByUser returns organisations the user leads or has joined.
	ListByUser(ctx context.Context, userID string) ([]*Organisation, error)
	AddMember(ctx context.Context, orgID, userID string) error
	RemoveMember(ctx context.Context, orgID, userID string) error
}

type pgxOrganisationRepository struct {
	pool *pgxpool.Pool
}

func NewPgxOrganisationRepository(pool *pgxpool.Pool) OrganisationRepository {
	return &pgxOrganisationRepository{pool: pool}
}

func scanOrganisation(row pgx.Row) (*Organisation, error) {
	o := &Organisation{}
	if err := row.Scan(&o.ID, &o.Name, &o.Subtitle, &o.Description, &o.Leader, &o.CreatedAt); err != nil {
		return nil, err
	}
	return o, nil
}

func (p *pgxOrganisationRepository) Create(ctx context.Context, org *Organisation) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("organisations", "org_id", "name", "subtitle", "description", "leader"),
		im.Values(psql.Arg(org.ID), psql.Arg(org.Name), psql.Arg(org.Subtitle), psql.Arg(org.Description), psql.Arg(org.Leader)),
		im.Returning("org_id", "name", "subtitle", "description", "leader", "created_at"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	created, err := scanOrganisation(e.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}

	*org = *created
	return nil
}

func (p *pgxOrganisationRepository) Get(ctx context.Context, orgID string) (*Organisation, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("org_id", "name", "subtitle", "description", "leader", "created_at"),
		sm.From("organisations"),
		sm.Where(psql.Quote("org_id").EQ(psql.Arg(orgID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	o, err := scanOrganisation(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (p *pgxOrganisationRepository) ListByUser(ctx context.Context, userID string) ([]*Organisation, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("o.org_id", "o.name", "o.subtitle", "o.description", "o.leader", "o.created_at"),
		sm.From("organisations").As("o"),
		sm.LeftJoin("organisation_members").As("om").On(
			psql.Quote("om", "org_id").EQ(psql.Quote("o", "org_id")),
			psql.Quote("om", "user_id").EQ(psql.Arg(userID)),
		),
		sm.Where(
			psql.Quote("o", "leader").EQ(psql.Arg(userID)).
				Or(psql.Quote("om", "user_id").IsNotNull()),
		),
		sm.OrderBy(psql.Quote("o", "created_at")).Asc(),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Organisation, error) {
		return scanOrganisation(row)
	})
}

func (p *pgxOrganisationRepository) AddMember(ctx context.Context, orgID, userID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("organisation_members", "org_id", "user_id"),
		im.Values(psql.Arg(orgID), psql.Arg(userID)),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}

func (p *pgxOrganisationRepository) RemoveMember(ctx context.Context, orgID, userID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("organisation_members"),
		dm.Where(
			psql.Quote("org_id").EQ(psql.Arg(orgID)).
				And(psql.Quote("user_id").EQ(psql.Arg(userID))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
