package service

import (
	"context"

	"github.com/yakoovad/groupmatch/internal/model"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

// MatchNotifier is told, synchronously and once, about every match that was turned into
// membership. group is the group both parties ended up in.
type MatchNotifier interface {
	OnMatchResolved(ctx context.Context, group *model.Group)
}

type NotifierFunc func(ctx context.Context, group *model.Group)

func (f NotifierFunc) OnMatchResolved(ctx context.Context, group *model.Group) {
	f(ctx, group)
}

// Notifiers fans a notification out in order.
type Notifiers []MatchNotifier

func (n Notifiers) OnMatchResolved(ctx context.Context, group *model.Group) {
	for _, notifier := range n {
		notifier.OnMatchResolved(ctx, group)
	}
}

// LogNotifier records resolved matches on the request logger.
type LogNotifier struct{}

func (LogNotifier) OnMatchResolved(ctx context.Context, group *model.Group) {
	ids := make([]string, 0, group.Size())
	for _, m := range group.Members {
		ids = append(ids, m.UserID)
	}
	logger.FromContext(ctx).Info("match resolved",
		zap.String("group_id", group.ID),
		zap.String("project_id", group.ProjectID),
		zap.Strings("members", ids))
}
