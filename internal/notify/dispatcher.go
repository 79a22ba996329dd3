package notify

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lucasbessegato/TrokaiBackend/internal/events"
	"github.com/lucasbessegato/TrokaiBackend/internal/logging"
	"github.com/lucasbessegato/TrokaiBackend/internal/models"
)

// Dispatcher persists derived notifications and fans them out as kafka
// events. Delivery is fire-and-forget: a publish failure is logged and
// never fails the enclosing write.
type Dispatcher struct {
	Producer *events.Producer
}

func (d *Dispatcher) Dispatch(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	if err := tx.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	event := map[string]interface{}{
		"type":           "notification_created",
		"notificationID": n.ID,
		"userID":         n.UserID,
		"kind":           n.Type,
	}
	if err := d.Producer.PublishEvent(pubCtx, events.TopicNotificationEvents, fmt.Sprint(n.UserID), event); err != nil {
		logging.FromContext(ctx).Error("notification_publish_failed", "notificationID", n.ID, "error", err)
	}

	return nil
}
