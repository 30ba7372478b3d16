package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/yakoovad/groupmatch/internal/testhelpers"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	return testhelpers.GetTestPool(t)
}

type fixture struct {
	t    *testing.T
	pool *pgxpool.Pool
}

func (f fixture) profile(id string, languages, skills []string) {
	f.t.Helper()
	require.NoError(f.t, NewPgxProfileRepository(f.pool).Upsert(context.Background(), &Profile{
		UserID: id, Username: id, Languages: languages, Skills: skills,
	}))
}

func (f fixture) project(orgID, id string, minSize, maxSize int) {
	f.t.Helper()
	ctx := context.Background()

	if _, err := NewPgxOrganisationRepository(f.pool).Get(ctx, orgID); err != nil {
		f.profile("leader-"+orgID, nil, nil)
		require.NoError(f.t, NewPgxOrganisationRepository(f.pool).Create(ctx, &Organisation{
			ID: orgID, Name: orgID, Leader: "leader-" + orgID,
		}))
	}

	require.NoError(f.t, NewPgxProjectRepository(f.pool).Create(ctx, &Project{
		ID: id, OrganisationID: orgID, Name: id, MinGroupSize: minSize, MaxGroupSize: maxSize,
	}))
}

func (f fixture) group(id, projectID string, members ...string) {
	f.t.Helper()
	ctx := context.Background()
	groups := NewPgxGroupRepository(f.pool)

	require.NoError(f.t, groups.Create(ctx, &Group{ID: id, ProjectID: projectID}))
	if len(members) == 0 {
		return
	}
	require.NoError(f.t, groups.CompareAndSetMemberCount(ctx, id, 0, len(members)))
	require.NoError(f.t, groups.AddMembers(ctx, id, projectID, members))
}
