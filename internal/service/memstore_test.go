package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/repository"
)

// memStore is an in-memory stand-in for the postgres repositories with the same
// compare-and-set and uniqueness guarantees. It backs the stateful workflow tests.
type memStore struct {
	mu sync.Mutex

	projects   map[string]*repository.Project
	profiles   map[string]*repository.Profile
	groups     map[string]*repository.Group
	groupOrder []string
	members    map[string][]string
	requests   []*repository.JoinRequest
	clock      time.Time
}

func newMemStore() *memStore {
	return &memStore{
		projects: map[string]*repository.Project{},
		profiles: map[string]*repository.Profile{},
		groups:   map[string]*repository.Group{},
		members:  map[string][]string{},
		clock:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) addProject(id string, minSize, maxSize int) {
	s.projects[id] = &repository.Project{ID: id, OrganisationID: "org", Name: id, MinGroupSize: minSize, MaxGroupSize: maxSize}
}

func (s *memStore) addProfile(id string, languages, skills []string) {
	s.profiles[id] = &repository.Profile{UserID: id, Username: id, Languages: languages, Skills: skills}
}

func (s *memStore) addGroup(id, projectID string, memberIDs ...string) {
	for _, m := range memberIDs {
		if _, ok := s.profiles[m]; !ok {
			s.addProfile(m, []string{"EN"}, []string{"go"})
		}
	}
	s.groups[id] = &repository.Group{ID: id, ProjectID: projectID, MemberCount: len(memberIDs), CreatedAt: s.tick()}
	s.groupOrder = append(s.groupOrder, id)
	s.members[id] = slices.Clone(memberIDs)
}

func (s *memStore) memberCount(groupID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.members[groupID])
}

func (s *memStore) hasRequest(requester, target string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findRequest(requester, target) >= 0
}

func (s *memStore) requestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *memStore) findRequest(requester, target string) int {
	return slices.IndexFunc(s.requests, func(r *repository.JoinRequest) bool {
		return r.RequesterGroupID == requester && r.TargetGroupID == target
	})
}

type memGroups struct{ *memStore }

func (g memGroups) Create(_ context.Context, group *repository.Group) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.projects[group.ProjectID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := g.groups[group.ID]; ok {
		return repository.ErrAlreadyExists
	}
	group.MemberCount = 0
	group.CreatedAt = g.tick()
	stored := *group
	g.groups[group.ID] = &stored
	g.groupOrder = append(g.groupOrder, group.ID)
	return nil
}

func (g memGroups) Get(_ context.Context, groupID string) (*repository.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	group, ok := g.groups[groupID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *group
	return &cp, nil
}

func (g memGroups) Delete(_ context.Context, groupID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.groups[groupID]; !ok {
		return repository.ErrNotFound
	}
	delete(g.groups, groupID)
	delete(g.members, groupID)
	g.groupOrder = slices.DeleteFunc(g.groupOrder, func(id string) bool { return id == groupID })
	g.requests = slices.DeleteFunc(g.requests, func(r *repository.JoinRequest) bool {
		return r.RequesterGroupID == groupID || r.TargetGroupID == groupID
	})
	return nil
}

func (g memGroups) ListByProject(_ context.Context, projectID string) ([]*repository.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []*repository.Group{}
	for _, id := range g.groupOrder {
		if group := g.groups[id]; group.ProjectID == projectID {
			cp := *group
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (g memGroups) FindByUser(_ context.Context, projectID, userID string) (*repository.Group, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range g.groupOrder {
		group := g.groups[id]
		if group.ProjectID == projectID && slices.Contains(g.members[id], userID) {
			cp := *group
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (g memGroups) GetMembers(_ context.Context, groupID string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.members[groupID]), nil
}

func (g memGroups) ListMembersByProject(_ context.Context, projectID string) ([]*repository.Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := []*repository.Member{}
	for _, id := range g.groupOrder {
		if g.groups[id].ProjectID != projectID {
			continue
		}
		for _, userID := range g.members[id] {
			out = append(out, &repository.Member{GroupID: id, UserID: userID})
		}
	}
	return out, nil
}

func (g memGroups) CompareAndSetMemberCount(_ context.Context, groupID string, expected, next int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	group, ok := g.groups[groupID]
	if !ok || group.MemberCount != expected {
		return repository.ErrConflict
	}
	group.MemberCount = next
	return nil
}

func (g memGroups) AddMembers(_ context.Context, groupID, projectID string, userIDs []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, userID := range userIDs {
		if _, ok := g.profiles[userID]; !ok {
			return repository.ErrNotFound
		}
		for id, members := range g.members {
			if g.groups[id].ProjectID == projectID && slices.Contains(members, userID) {
				return repository.ErrAlreadyExists
			}
		}
	}
	g.members[groupID] = append(g.members[groupID], userIDs...)
	return nil
}

type memProjects struct{ *memStore }

func (p memProjects) Create(_ context.Context, project *repository.Project) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := *project
	p.projects[project.ID] = &stored
	return nil
}

func (p memProjects) Get(_ context.Context, projectID string) (*repository.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	project, ok := p.projects[projectID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *project
	return &cp, nil
}

func (p memProjects) ListByOrganisation(_ context.Context, orgID string) ([]*repository.Project, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*repository.Project{}
	for _, project := range p.projects {
		if project.OrganisationID == orgID {
			cp := *project
			out = append(out, &cp)
		}
	}
	return out, nil
}

type memProfiles struct{ *memStore }

func (p memProfiles) Get(_ context.Context, userID string) (*repository.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profile, ok := p.profiles[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *profile
	return &cp, nil
}

func (p memProfiles) Upsert(_ context.Context, profile *repository.Profile) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := *profile
	p.profiles[profile.UserID] = &stored
	return nil
}

func (p memProfiles) ListByProject(_ context.Context, projectID string) ([]*repository.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*repository.Profile{}
	for id, members := range p.members {
		if p.groups[id].ProjectID != projectID {
			continue
		}
		for _, userID := range members {
			cp := *p.profiles[userID]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (p memProfiles) ListByGroup(_ context.Context, groupID string) ([]*repository.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []*repository.Profile{}
	for _, userID := range p.members[groupID] {
		cp := *p.profiles[userID]
		out = append(out, &cp)
	}
	return out, nil
}

func (p memProfiles) ListByOrganisation(context.Context, string) ([]*repository.Profile, error) {
	return []*repository.Profile{}, nil
}

type memJoinRequests struct{ *memStore }

func (j memJoinRequests) Create(_ context.Context, req *repository.JoinRequest) (bool, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.groups[req.RequesterGroupID]; !ok {
		return false, repository.ErrNotFound
	}
	if _, ok := j.groups[req.TargetGroupID]; !ok {
		return false, repository.ErrNotFound
	}
	if j.findRequest(req.RequesterGroupID, req.TargetGroupID) >= 0 {
		return false, nil
	}
	stored := *req
	stored.CreatedAt = j.tick()
	j.requests = append(j.requests, &stored)
	return true, nil
}

func (j memJoinRequests) Get(_ context.Context, requesterGroupID, targetGroupID string) (*repository.JoinRequest, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	i := j.findRequest(requesterGroupID, targetGroupID)
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	cp := *j.requests[i]
	return &cp, nil
}

func (j memJoinRequests) Delete(_ context.Context, requesterGroupID, targetGroupID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	i := j.findRequest(requesterGroupID, targetGroupID)
	if i < 0 {
		return repository.ErrNotFound
	}
	j.requests = slices.Delete(j.requests, i, i+1)
	return nil
}

func (j memJoinRequests) ListByRequester(_ context.Context, requesterGroupID string) ([]*repository.JoinRequest, error) {
	return j.listBy(func(r *repository.JoinRequest) bool { return r.RequesterGroupID == requesterGroupID })
}

func (j memJoinRequests) ListByTarget(_ context.Context, targetGroupID string) ([]*repository.JoinRequest, error) {
	return j.listBy(func(r *repository.JoinRequest) bool { return r.TargetGroupID == targetGroupID })
}

func (j memJoinRequests) listBy(keep func(*repository.JoinRequest) bool) ([]*repository.JoinRequest, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := []*repository.JoinRequest{}
	for _, r := range j.requests {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// services wires every matching service on top of the in-memory store.
type services struct {
	ledger   *CapacityLedger
	groups   *GroupService
	feed     *FeedService
	match    *MatchService

	mu       sync.Mutex
	resolved []string
}

func newServices(s *memStore) *services {
	tx := new(MockTransactor)
	svc := &services{}

	svc.ledger = NewCapacityLedger(tx).
		WithGroupRepo(memGroups{s}).
		WithProjectRepo(memProjects{s}).
		WithProfileRepo(memProfiles{s})

	svc.groups = NewGroupService(tx).
		WithGroupRepo(memGroups{s}).
		WithProjectRepo(memProjects{s}).
		WithProfileRepo(memProfiles{s}).
		WithJoinRequestRepo(memJoinRequests{s}).
		WithCapacityLedger(svc.ledger)

	svc.feed = NewFeedService().
		WithGroupRepo(memGroups{s}).
		WithProjectRepo(memProjects{s}).
		WithProfileRepo(memProfiles{s}).
		WithJoinRequestRepo(memJoinRequests{s})

	svc.match = NewMatchService(tx).
		WithGroupRepo(memGroups{s}).
		WithProjectRepo(memProjects{s}).
		WithJoinRequestRepo(memJoinRequests{s}).
		WithGroupService(svc.groups).
		WithCapacityLedger(svc.ledger).
		WithNotifier(NotifierFunc(func(_ context.Context, g *model.Group) {
			svc.mu.Lock()
			defer svc.mu.Unlock()
			svc.resolved = append(svc.resolved, g.ID)
		}))

	return svc
}
