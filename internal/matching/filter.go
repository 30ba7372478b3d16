// Package matching holds the side-effect free parts of group matching: the filter
// predicate applied to feed candidates and the capacity arithmetic of a project.
package matching

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/yakoovad/groupmatch/internal/model"
)

var ErrInvalidCriteria = errors.New("invalid filter criteria")

// ValidateCriteria rejects criteria that can never be evaluated meaningfully.
func ValidateCriteria(c model.FilterCriteria) error {
	if c.NumMembers < 0 {
		return errors.Wrapf(ErrInvalidCriteria, "num_members must not be negative, got %d", c.NumMembers)
	}
	for _, l := range c.Languages {
		if strings.TrimSpace(l) == "" {
			return errors.Wrap(ErrInvalidCriteria, "languages must not contain blank entries")
		}
	}
	for _, s := range c.Skills {
		if strings.TrimSpace(s) == "" {
			return errors.Wrap(ErrInvalidCriteria, "skills must not contain blank entries")
		}
	}
	return nil
}

// Matches reports whether candidate passes every clause of c.
//
// The language and skill clauses are per member: each member on its own must have at least
// one of the requested languages (skills). A group whose members only collectively cover the
// requested set does not match.
func Matches(candidate *model.Group, c model.FilterCriteria) bool {
	if c.NumMembers > 0 && candidate.Size() != c.NumMembers {
		return false
	}

	if len(c.Languages) > 0 && !everyMember(candidate, func(p *model.Profile) []string { return p.Languages }, c.Languages) {
		return false
	}

	if len(c.Skills) > 0 && !everyMember(candidate, func(p *model.Profile) []string { return p.Skills }, c.Skills) {
		return false
	}

	return true
}

func everyMember(g *model.Group, attr func(*model.Profile) []string, wanted []string) bool {
	for _, member := range g.Members {
		if !slices.ContainsFunc(attr(member), func(v string) bool { return slices.Contains(wanted, v) }) {
			return false
		}
	}
	return true
}
