package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spybee/helpdesk/internal/events"
	"github.com/spybee/helpdesk/internal/persistence"
)

const (
	notificationChannel = "helpdesk:notifications"
	notificationFeedKey = "helpdesk:notifications:recent"
	notificationFeedCap = 100
)

// FeedEntry is one item on the notification feed the UI polls for toasts.
type FeedEntry struct {
	Kind      string    `json:"kind"`
	TicketID  string    `json:"ticket_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationService fans domain events out to the log and the Redis feed.
type NotificationService struct {
	dispatcher events.Dispatcher
	redis      *persistence.Redis
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, redis *persistence.Redis, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		redis:      redis,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventCommentAdded, n.handleCommentAdded)
}

// Push publishes one feed entry. Used directly by the dashboard notifier for
// sync outcomes and indirectly by the event handlers.
func (n *NotificationService) Push(ctx context.Context, entry FeedEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if n.redis == nil || n.redis.Client == nil {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		n.logger.Warn("marshal notification", zap.Error(err))
		return
	}
	if err := n.redis.Client.Publish(ctx, notificationChannel, payload).Err(); err != nil {
		n.logger.Debug("publish notification", zap.Error(err))
	}
	pipe := n.redis.Client.Pipeline()
	pipe.LPush(ctx, notificationFeedKey, payload)
	pipe.LTrim(ctx, notificationFeedKey, 0, notificationFeedCap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		n.logger.Debug("store notification", zap.Error(err))
	}
}

// Recent returns the latest feed entries, newest first.
func (n *NotificationService) Recent(ctx context.Context, limit int) ([]FeedEntry, error) {
	if n.redis == nil || n.redis.Client == nil {
		return []FeedEntry{}, nil
	}
	if limit <= 0 || limit > notificationFeedCap {
		limit = notificationFeedCap
	}
	raw, err := n.redis.Client.LRange(ctx, notificationFeedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]FeedEntry, 0, len(raw))
	for _, item := range raw {
		var entry FeedEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.Push(ctx, FeedEntry{
		Kind:     "success",
		TicketID: event.TicketID,
		Message:  "New ticket submitted",
	})
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketStatusChanged", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleCommentAdded(ctx context.Context, event events.Event) error {
	n.logger.Info("CommentAdded", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	n.Push(ctx, FeedEntry{
		Kind:     "success",
		TicketID: event.TicketID,
		Message:  "New comment on ticket",
	})
	return nil
}
