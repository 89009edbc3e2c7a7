package event

import (
	"context"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notification is a push message for the external delivery service
type Notification struct {
	Topic   string
	Title   string
	Body    string
	EventID string
}

// Notifier hands notifications to the push delivery service
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log instead of delivering them
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the notification
func (n *LogNotifier) Notify(_ context.Context, msg Notification) error {
	n.logger.Info("Push notification",
		zap.String("topic", msg.Topic),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.String("event_id", msg.EventID),
	)
	return nil
}

// ActivityNotificationHandler turns activity lifecycle events into push
// notifications. Admins of a site are told about activities awaiting review;
// site subscribers are told about publications and cancellations.
type ActivityNotificationHandler struct {
	notifier Notifier
}

// NewActivityNotificationHandler creates the handler
func NewActivityNotificationHandler(notifier Notifier) *ActivityNotificationHandler {
	return &ActivityNotificationHandler{notifier: notifier}
}

// EventTypes returns the activity events that produce notifications
func (h *ActivityNotificationHandler) EventTypes() []string {
	return []string{
		activity.EventTypeActivitySubmitted,
		activity.EventTypeActivityPublished,
		activity.EventTypeActivityDeleted,
	}
}

// Handle builds and sends the notification for evt
func (h *ActivityNotificationHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	msg, ok := notificationFor(evt)
	if !ok {
		return nil
	}
	msg.EventID = evt.EventID().String()
	return h.notifier.Notify(ctx, msg)
}

func notificationFor(evt shared.DomainEvent) (Notification, bool) {
	switch e := evt.(type) {
	case *activity.ActivitySubmittedEvent:
		if e.Status != activity.StatusInReview {
			return Notification{}, false
		}
		return Notification{
			Topic: adminTopic(e.Site),
			Title: "Activity awaiting review",
			Body:  e.Title,
		}, true
	case *activity.ActivityPublishedEvent:
		return Notification{
			Topic: siteTopic(e.Site),
			Title: "New activity",
			Body:  e.Title,
		}, true
	case *activity.ActivityDeletedEvent:
		return Notification{
			Topic: siteTopic(e.Site),
			Title: "Activity cancelled",
			Body:  e.Title,
		}, true
	}
	return Notification{}, false
}

func siteTopic(site activity.Site) string {
	return "site." + site.String()
}

func adminTopic(site activity.Site) string {
	return "site." + site.String() + ".admins"
}

var _ shared.EventHandler = (*ActivityNotificationHandler)(nil)
