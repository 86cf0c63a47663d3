package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/poll-service/internal/events"
)

const (
	activityKey = "activity:recent"
	activityCap = 100
)

// ActivityService records domain events as an audit trail: structured log
// lines plus a capped recent-activity list in Redis. This is internal
// bookkeeping, not client-facing vote broadcasting.
type ActivityService struct {
	dispatcher events.Dispatcher
	client     *redis.Client
	logger     *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(dispatcher events.Dispatcher, client *redis.Client, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		dispatcher: dispatcher,
		client:     client,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to every event type.
func (a *ActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventPollCreated,
		events.EventVoteCast,
		events.EventOptionAdded,
		events.EventPollDeleted,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *ActivityService) record(ctx context.Context, event events.Event) error {
	a.logger.Info("activity",
		zap.String("event_type", string(event.Type)),
		zap.String("poll_id", event.PollID),
		zap.String("actor", event.Actor.UserID),
	)

	if a.client == nil {
		return nil
	}
	entry, err := json.Marshal(event)
	if err != nil {
		a.logger.Warn("activity entry not serializable", zap.Error(err))
		return nil
	}
	pipe := a.client.Pipeline()
	pipe.LPush(ctx, activityKey, entry)
	pipe.LTrim(ctx, activityKey, 0, activityCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		// the feed is best-effort; the triggering request must not fail
		a.logger.Warn("activity feed write failed", zap.Error(err))
	}
	return nil
}
