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

type JoinRequest struct {
	RequesterGroupID string    `db:"requester_group"`
	TargetGroupID    string    `db:"target_group"`
	ProjectID        string    `db:"project_id"`
	RequesterUserID  string    `db:"requester_user"`
	CreatedAt        time.Time `db:"created_at"`
}

type JoinRequestRepository interface {
	// Create inserts the request unless the same (requester, target) pair is already
	// pending. created reports whether a new row was written.
	Create(ctx context.Context, req *JoinRequest) (created bool, err error)
	Get(ctx context.Context, requesterGroupID, targetGroupID string) (*JoinRequest, error)
	Delete(ctx context.Context, requesterGroupID, targetGroupID string) error
	ListByRequester(ctx context.Context, requesterGroupID string) ([]*JoinRequest, error)
	ListByTarget(ctx context.Context, targetGroupID string) ([]*JoinRequest, error)
}

type pgxJoinRequestRepository struct {
	pool *pgxpool.Pool
}

func NewPgxJoinRequestRepository(pool *pgxpool.Pool) JoinRequestRepository {
	return &pgxJoinRequestRepository{pool: pool}
}

var joinRequestColumns = []any{"requester_group", "target_group", "project_id", "requester_user", "created_at"}

func scanJoinRequest(row pgx.Row) (*JoinRequest, error) {
	r := &JoinRequest{}
	if err := row.Scan(&r.RequesterGroupID, &r.TargetGroupID, &r.ProjectID, &r.RequesterUserID, &r.CreatedAt); err != nil {
		return nil, err
	}
	return r, nil
}

func (p *pgxJoinRequestRepository) Create(ctx context.Context, req *JoinRequest) (bool, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("join_requests", "requester_group", "target_group", "project_id", "requester_user"),
		im.Values(psql.Arg(req.RequesterGroupID), psql.Arg(req.TargetGroupID), psql.Arg(req.ProjectID), psql.Arg(req.RequesterUserID)),
		im.OnConflict(psql.Quote("requester_group"), psql.Quote("target_group")).DoNothing(),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return false, err
	}

	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return false, mapPgError(err)
	}

	return tag.RowsAffected() == 1, nil
}

func (p *pgxJoinRequestRepository) Get(ctx context.Context, requesterGroupID, targetGroupID string) (*JoinRequest, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(joinRequestColumns...),
		sm.From("join_requests"),
		sm.Where(
			psql.Quote("requester_group").EQ(psql.Arg(requesterGroupID)).
				And(psql.Quote("target_group").EQ(psql.Arg(targetGroupID))),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	r, err := scanJoinRequest(e.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return r, err
}

func (p *pgxJoinRequestRepository) Delete(ctx context.Context, requesterGroupID, targetGroupID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("join_requests"),
		dm.Where(
			psql.Quote("requester_group").EQ(psql.Arg(requesterGroupID)).
				And(psql.Quote("target_group").EQ(psql.Arg(targetGroupID))),
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

func (p *pgxJoinRequestRepository) ListByRequester(ctx context.Context, requesterGroupID string) ([]*JoinRequest, error) {
	return p.listBy(ctx, "requester_group", requesterGroupID)
}

func (p *pgxJoinRequestRepository) ListByTarget(ctx context.Context, targetGroupID string) ([]*JoinRequest, error) {
	return p.listBy(ctx, "target_group", targetGroupID)
}

func (p *pgxJoinRequestRepository) listBy(ctx context.Context, column, groupID string) ([]*JoinRequest, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(joinRequestColumns...),
		sm.From("join_requests"),
		sm.Where(psql.Quote(column).EQ(psql.Arg(groupID))),
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

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*JoinRequest, error) {
		return scanJoinRequest(row)
	})
}
