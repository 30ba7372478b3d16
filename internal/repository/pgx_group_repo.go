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
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/yakoovad/groupmatch/internal/db"
)

type Group struct {
	ID          string    `db:"group_id"`
	ProjectID   string    `db:"project_id"`
	MemberCount int       `db:"member_count"`
	CreatedAt   time.Time `db:"created_at"`
}

type Member struct {
	GroupID  string    `db:"group_id"`
	UserID   string    `db:"user_id"`
	JoinedAt time.Time `db:"joined_at"`
}

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	Get(ctx context.Context, groupID string) (*Group, error)
	Delete(ctx context.Context, groupID string) error
	ListByProject(ctx context.Context, projectID string) ([]*Group, error)
	FindByUser(ctx context.Context, projectID, userID string) (*Group, error)
	GetMembers(ctx context.Context, groupID string) ([]string, error)
	ListMembersByProject(ctx context.Context, projectID string) ([]*Member, error)
	// CompareAndSetMemberCount moves member_count from expected to next and fails with
	// ErrConflict when the stored value is no longer expected.
	CompareAndSetMemberCount(ctx context.Context, groupID string, expected, next int) error
	AddMembers(ctx context.Context, groupID, projectID string, userIDs []string) error
}

type pgxGroupRepository struct {
	pool *pgxpool.Pool
}

func NewPgxGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &pgxGroupRepository{pool: pool}
}

var groupColumns = []any{"group_id", "project_id", "member_count", "created_at"}

func scanGroup(row pgx.Row) (*Group, error) {
	g := &Group{}
	if err := row.Scan(&g.ID, &g.ProjectID, &g.MemberCount, &g.CreatedAt); err != nil {
		return nil, err
	}
	return g, nil
}

func (p *pgxGroupRepository) Create(ctx context.Context, group *Group) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("groups", "group_id", "project_id", "member_count"),
		im.Values(psql.Arg(group.ID), psql.Arg(group.ProjectID), psql.Arg(0)),
		im.Returning(groupColumns...),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	created, err := scanGroup(e.QueryRow(ctx, sql, args...))
	if err != nil {
		return mapPgError(err)
	}

	*group = *created
	return nil
}

func (p *pgxGroupRepository) Get(ctx context.Context, groupID string) (*Group, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(groupColumns...),
		sm.From("groups"),
		sm.Where(psql.Quote("group_id").EQ(psql.Arg(groupID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	g, err := scanGroup(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// Delete removes the group. Its member rows and join requests go with it (ON DELETE CASCADE).
func (p *pgxGroupRepository) Delete(ctx context.Context, groupID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("groups"),
		dm.Where(psql.Quote("group_id").EQ(psql.Arg(groupID))),
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

// ListByProject returns the project's groups in creation order.
func (p *pgxGroupRepository) ListByProject(ctx context.Context, projectID string) ([]*Group, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(groupColumns...),
		sm.From("groups"),
		sm.Where(psql.Quote("project_id").EQ(psql.Arg(projectID))),
		sm.OrderBy("seq").Asc(),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Group, error) {
		return scanGroup(row)
	})
}

func (p *pgxGroupRepository) FindByUser(ctx context.Context, projectID, userID string) (*Group, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("g.group_id", "g.project_id", "g.member_count", "g.created_at"),
		sm.From("groups").As("g"),
		sm.InnerJoin("group_members").As("gm").On(psql.Quote("gm", "group_id").EQ(psql.Quote("g", "group_id"))),
		sm.Where(
			psql.Quote("gm", "project_id").EQ(psql.Arg(projectID)).
				And(psql.Quote("gm", "user_id").EQ(psql.Arg(userID))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	g, err := scanGroup(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return g, err
}

// GetMembers returns member user ids in join order.
func (p *pgxGroupRepository) GetMembers(ctx context.Context, groupID string) ([]string, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("user_id"),
		sm.From("group_members"),
		sm.Where(psql.Quote("group_id").EQ(psql.Arg(groupID))),
		sm.OrderBy("joined_at").Asc(),
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

	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (p *pgxGroupRepository) ListMembersByProject(ctx context.Context, projectID string) ([]*Member, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("group_id", "user_id", "joined_at"),
		sm.From("group_members"),
		sm.Where(psql.Quote("project_id").EQ(psql.Arg(projectID))),
		sm.OrderBy("joined_at").Asc(),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Member, error) {
		m := &Member{}
		if err := row.Scan(&m.GroupID, &m.UserID, &m.JoinedAt); err != nil {
			return nil, err
		}
		return m, nil
	})
}

func (p *pgxGroupRepository) CompareAndSetMemberCount(ctx context.Context, groupID string, expected, next int) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("groups"),
		um.SetCol("member_count").ToArg(next),
		um.Where(
			psql.Quote("group_id").EQ(psql.Arg(groupID)).
				And(psql.Quote("member_count").EQ(psql.Arg(expected))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

func (p *pgxGroupRepository) AddMembers(ctx context.Context, groupID, projectID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return nil
	}

	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("group_members", "group_id", "project_id", "user_id"),
	)
	for _, userID := range userIDs {
		q.Apply(im.Values(psql.Arg(groupID), psql.Arg(projectID), psql.Arg(userID)))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return mapPgError(err)
	}
	return nil
}
