package mq

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"vasati/db"
	"vasati/models"
	"vasati/rdx"

	"github.com/google/uuid"
)

const channel = "notification-events"

// Emit publishes an admin-notification event to Redis. The primary record is
// already persisted by the caller; losing an event only delays the derived
// notification, which the worker can re-create from the primary.
func Emit(ctx context.Context, ev models.NotificationEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("mq: marshal event: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("mq: publish failed, writing notification inline: %v", err)
		insert(ctx, ev)
	}
}

// StartNotificationWorker consumes outbox events and persists them as
// admin notifications.
func StartNotificationWorker() {
	ctx := context.Background()
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	log.Println("[NotificationWorker] listening for events...")

	for msg := range ch {
		var ev models.NotificationEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Printf("[NotificationWorker] bad payload: %v", err)
			continue
		}
		insert(ctx, ev)
	}
}

func insert(ctx context.Context, ev models.NotificationEvent) {
	n := models.Notification{
		NotificationID: uuid.NewString(),
		SocietyID:      ev.SocietyID,
		Category:       ev.Category,
		Title:          ev.Title,
		Message:        ev.Message,
		EntityID:       ev.EntityID,
		CreatedAt:      time.Now(),
	}
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := db.NotificationsCollection.InsertOne(cctx, n); err != nil {
		log.Printf("mq: insert notification: %v", err)
	}
}
