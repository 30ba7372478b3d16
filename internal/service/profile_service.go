package service

import (
	"context"
	"slices"
	"strings"

	"github.com/yakoovad/groupmatch/internal/db"
	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/internal/repository"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

type ProfileService struct {
	tx db.Transactor

	profiles repository.ProfileRepository
}

func NewProfileService(tx db.Transactor) *ProfileService {
	return &ProfileService{tx: tx}
}

func (p *ProfileService) GetProfile(ctx context.Context, userID string) (*model.Profile, *Error) {
	l := logger.FromContext(ctx)
	l.Debug("getting profile", zap.String("user_id", userID))

	profile, err := p.profiles.Get(ctx, userID)
	if err != nil {
		l.Warn("failed to get profile", zap.String("user_id", userID), zap.Error(err))
		return nil, repoError(err, "profile not found", "failed to get profile")
	}
	return toModelProfile(profile), nil
}

// UpsertProfile stores the profile, replacing its skills and languages. Entries are
// trimmed and de-duplicated; blank ones are dropped.
func (p *ProfileService) UpsertProfile(ctx context.Context, profile *model.Profile) (*model.Profile, *Error) {
	l := logger.FromContext(ctx)
	l.Info("upserting profile", zap.String("user_id", profile.UserID))

	repoProfile := &repository.Profile{
		UserID:    profile.UserID,
		Username:  profile.Username,
		Bio:       profile.Bio,
		Skills:    normalize(profile.Skills),
		Languages: normalize(profile.Languages),
	}

	err := p.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := p.profiles.Upsert(txCtx, repoProfile); err != nil {
			l.Error("failed to upsert profile", zap.String("user_id", profile.UserID), zap.Error(err))
			return NewError(ErrorCodeStoreUnavailable, "failed to upsert profile")
		}
		return nil
	})
	if res := asError(err); res != nil {
		return nil, res
	}

	return toModelProfile(repoProfile), nil
}

func normalize(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

func (p *ProfileService) WithProfileRepo(r repository.ProfileRepository) *ProfileService {
	p.profiles = r
	return p
}
