package api

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/yakoovad/groupmatch/internal/repository"
)

type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, project *repository.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *MockProjectRepository) Get(ctx context.Context, projectID string) (*repository.Project, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Project), args.Error(1)
}

func (m *MockProjectRepository) ListByOrganisation(ctx context.Context, orgID string) ([]*repository.Project, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Project), args.Error(1)
}

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *repository.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) Get(ctx context.Context, groupID string) (*repository.Group, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Group), args.Error(1)
}

func (m *MockGroupRepository) Delete(ctx context.Context, groupID string) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

func (m *MockGroupRepository) ListByProject(ctx context.Context, projectID string) ([]*repository.Group, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Group), args.Error(1)
}

func (m *MockGroupRepository) FindByUser(ctx context.Context, projectID, userID string) (*repository.Group, error) {
	args := m.Called(ctx, projectID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Group), args.Error(1)
}

func (m *MockGroupRepository) GetMembers(ctx context.Context, groupID string) ([]string, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockGroupRepository) ListMembersByProject(ctx context.Context, projectID string) ([]*repository.Member, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Member), args.Error(1)
}

func (m *MockGroupRepository) CompareAndSetMemberCount(ctx context.Context, groupID string, expected, next int) error {
	args := m.Called(ctx, groupID, expected, next)
	return args.Error(0)
}

func (m *MockGroupRepository) AddMembers(ctx context.Context, groupID, projectID string, userIDs []string) error {
	args := m.Called(ctx, groupID, projectID, userIDs)
	return args.Error(0)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Get(ctx context.Context, userID string) (*repository.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Profile), args.Error(1)
}

func (m *MockProfileRepository) Upsert(ctx context.Context, profile *repository.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) ListByProject(ctx context.Context, projectID string) ([]*repository.Profile, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListByGroup(ctx context.Context, groupID string) ([]*repository.Profile, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Profile), args.Error(1)
}

func (m *MockProfileRepository) ListByOrganisation(ctx context.Context, orgID string) ([]*repository.Profile, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.Profile), args.Error(1)
}

type MockJoinRequestRepository struct {
	mock.Mock
}

func (m *MockJoinRequestRepository) Create(ctx context.Context, req *repository.JoinRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

func (m *MockJoinRequestRepository) Get(ctx context.Context, requesterGroupID, targetGroupID string) (*repository.JoinRequest, error) {
	args := m.Called(ctx, requesterGroupID, targetGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestRepository) Delete(ctx context.Context, requesterGroupID, targetGroupID string) error {
	args := m.Called(ctx, requesterGroupID, targetGroupID)
	return args.Error(0)
}

func (m *MockJoinRequestRepository) ListByRequester(ctx context.Context, requesterGroupID string) ([]*repository.JoinRequest, error) {
	args := m.Called(ctx, requesterGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.JoinRequest), args.Error(1)
}

func (m *MockJoinRequestRepository) ListByTarget(ctx context.Context, targetGroupID string) ([]*repository.JoinRequest, error) {
	args := m.Called(ctx, targetGroupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repository.JoinRequest), args.Error(1)
}
