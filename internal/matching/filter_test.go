package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yakoovad/groupmatch/internal/model"
)

func member(langs, skills []string) *model.Profile {
	return &model.Profile{Languages: langs, Skills: skills}
}

func TestMatches(t *testing.T) {
	twoSpeakers := &model.Group{Members: []*model.Profile{
		member([]string{"EN"}, []string{"go", "sql"}),
		member([]string{"FR"}, []string{"go"}),
	}}

	tests := []struct {
		name     string
		group    *model.Group
		criteria model.FilterCriteria
		want     bool
	}{
		{
			name:     "empty criteria always match",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{},
			want:     true,
		},
		{
			name:     "empty criteria match an empty group",
			group:    &model.Group{},
			criteria: model.FilterCriteria{Languages: []string{}, Skills: []string{}},
			want:     true,
		},
		{
			name:     "not every member speaks EN",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{Languages: []string{"EN"}},
			want:     false,
		},
		{
			name:     "every member speaks one of EN or FR",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{Languages: []string{"EN", "FR"}},
			want:     true,
		},
		{
			name:     "every member has go",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{Skills: []string{"go"}},
			want:     true,
		},
		{
			name:     "collective skill coverage is not enough",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{Skills: []string{"sql"}},
			want:     false,
		},
		{
			name:     "exact member count",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{NumMembers: 2},
			want:     true,
		},
		{
			name:     "member count mismatch",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{NumMembers: 3},
			want:     false,
		},
		{
			name:     "all clauses together",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{NumMembers: 2, Languages: []string{"EN", "FR"}, Skills: []string{"go"}},
			want:     true,
		},
		{
			name:     "one failing clause fails the whole criteria",
			group:    twoSpeakers,
			criteria: model.FilterCriteria{NumMembers: 2, Languages: []string{"EN", "FR"}, Skills: []string{"rust"}},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.group, tt.criteria))
		})
	}
}

func TestValidateCriteria(t *testing.T) {
	tests := []struct {
		name     string
		criteria model.FilterCriteria
		wantErr  bool
	}{
		{name: "zero value", criteria: model.FilterCriteria{}},
		{name: "positive member count", criteria: model.FilterCriteria{NumMembers: 3, Languages: []string{"EN"}}},
		{name: "negative member count", criteria: model.FilterCriteria{NumMembers: -1}, wantErr: true},
		{name: "blank language", criteria: model.FilterCriteria{Languages: []string{"EN", " "}}, wantErr: true},
		{name: "blank skill", criteria: model.FilterCriteria{Skills: []string{""}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCriteria(tt.criteria)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCriteria)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 2, RemainingSlots(4, 2))
	assert.Equal(t, 0, RemainingSlots(4, 4))
	assert.Equal(t, 0, RemainingSlots(4, 6))

	// max 4, X has 2 members, Y has 3: Y cannot be absorbed by X.
	assert.False(t, HasCapacityFor(4, 2, 3))
	assert.True(t, HasCapacityFor(4, 2, 2))
	assert.True(t, HasCapacityFor(4, 4, 0))
}
