package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/groupmatch/internal/db"
)

type Profile struct {
	UserID    string   `db:"user_id"`
	Username  string   `db:"username"`
	Bio       string   `db:"bio"`
	Skills    []string `db:"-"`
	Languages []string `db:"-"`
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
	// ListByProject returns every profile that is a member of some group of the project.
	ListByProject(ctx context.Context, projectID string) ([]*Profile, error)
	ListByGroup(ctx context.Context, groupID string) ([]*Profile, error)
	ListByOrganisation(ctx context.Context, orgID string) ([]*Profile, error)
}

type pgxProfileRepository struct {
	pool *pgxpool.Pool
}

func NewPgxProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &pgxProfileRepository{pool: pool}
}

// profileScope restricts profile lookups to the users found in a membership table.
type profileScope struct {
	table  string
	column string
	value  string
}

// apply joins the membership table onto the aliased table holding user_id.
func (s *profileScope) apply(alias string) []bob.Mod[*dialect.SelectQuery] {
	if s == nil {
		return nil
	}
	return []bob.Mod[*dialect.SelectQuery]{
		sm.InnerJoin(s.table).As("scope").On(psql.Quote("scope", "user_id").EQ(psql.Quote(alias, "user_id"))),
		sm.Where(psql.Quote("scope", s.column).EQ(psql.Arg(s.value))),
	}
}

func (p *pgxProfileRepository) Get(ctx context.Context, userID string) (*Profile, error) {
	profiles, err := p.list(ctx, &profileScope{table: "profiles", column: "user_id", value: userID})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, ErrNotFound
	}
	return profiles[0], nil
}

func (p *pgxProfileRepository) ListByProject(ctx context.Context, projectID string) ([]*Profile, error) {
	return p.list(ctx, &profileScope{table: "group_members", column: "project_id", value: projectID})
}

func (p *pgxProfileRepository) ListByGroup(ctx context.Context, groupID string) ([]*Profile, error) {
	return p.list(ctx, &profileScope{table: "group_members", column: "group_id", value: groupID})
}

func (p *pgxProfileRepository) ListByOrganisation(ctx context.Context, orgID string) ([]*Profile, error) {
	return p.list(ctx, &profileScope{table: "organisation_members", column: "org_id", value: orgID})
}

func (p *pgxProfileRepository) list(ctx context.Context, scope *profileScope) ([]*Profile, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("p.user_id", "p.username", "p.bio"),
		sm.From("profiles").As("p"),
		sm.OrderBy(psql.Quote("p", "user_id")).Asc(),
	)
	q.Apply(scope.apply("p")...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Profile, error) {
		pr := &Profile{Skills: []string{}, Languages: []string{}}
		if err := row.Scan(&pr.UserID, &pr.Username, &pr.Bio); err != nil {
			return nil, err
		}
		return pr, nil
	})
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	byID := make(map[string]*Profile, len(profiles))
	for _, pr := range profiles {
		byID[pr.UserID] = pr
	}

	if err = p.attach(ctx, e, "user_skills", "skill_name", scope, func(pr *Profile, v string) {
		pr.Skills = append(pr.Skills, v)
	}, byID); err != nil {
		return nil, errors.Wrap(err, "failed to load skills")
	}

	if err = p.attach(ctx, e, "user_languages", "language_name", scope, func(pr *Profile, v string) {
		pr.Languages = append(pr.Languages, v)
	}, byID); err != nil {
		return nil, errors.Wrap(err, "failed to load languages")
	}

	return profiles, nil
}

// attach loads (user_id, column) pairs of table for the scoped users and hands them to add.
func (p *pgxProfileRepository) attach(
	ctx context.Context,
	e db.Executor,
	table, column string,
	scope *profileScope,
	add func(*Profile, string),
	byID map[string]*Profile,
) error {
	q := psql.Select(
		sm.Columns(psql.Quote("t", "user_id"), psql.Quote("t", column)),
		sm.From(table).As("t"),
		sm.OrderBy(psql.Quote("t", column)).Asc(),
	)
	q.Apply(scope.apply("t")...)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var userID, value string
		if err = rows.Scan(&userID, &value); err != nil {
			return err
		}
		if pr, ok := byID[userID]; ok {
			add(pr, value)
		}
	}
	return rows.Err()
}

// Upsert writes the profile row and replaces its skill and language sets.
// Run it inside a transaction to make the replacement atomic.
func (p *pgxProfileRepository) Upsert(ctx context.Context, profile *Profile) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("profiles", "user_id", "username", "bio"),
		im.Values(psql.Arg(profile.UserID), psql.Arg(profile.Username), psql.Arg(profile.Bio)),
		im.OnConflict(psql.Quote("user_id")).DoUpdate(
			im.SetCol("username").ToArg(profile.Username),
			im.SetCol("bio").ToArg(profile.Bio),
		),
	)
	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return mapPgError(err)
	}

	if err = p.replace(ctx, e, "user_skills", "skill_name", profile.UserID, profile.Skills); err != nil {
		return errors.Wrap(err, "failed to replace skills")
	}
	if err = p.replace(ctx, e, "user_languages", "language_name", profile.UserID, profile.Languages); err != nil {
		return errors.Wrap(err, "failed to replace languages")
	}

	return nil
}

func (p *pgxProfileRepository) replace(ctx context.Context, e db.Executor, table, column, userID string, values []string) error {
	del := psql.Delete(
		dm.From(table),
		dm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
	)

	sql, args, err := del.Build(ctx)
	if err != nil {
		return err
	}
	if _, err = e.Exec(ctx, sql, args...); err != nil {
		return err
	}

	if len(values) == 0 {
		return nil
	}

	ins := psql.Insert(
		im.Into(table, "user_id", column),
		im.OnConflict().DoNothing(),
	)
	for _, v := range values {
		ins.Apply(im.Values(psql.Arg(userID), psql.Arg(v)))
	}

	sql, args, err = ins.Build(ctx)
	if err != nil {
		return err
	}
	_, err = e.Exec(ctx, sql, args...)
	return err
}
