package models

import "time"

// User is an account that can log in: a resident, a guard, or a society admin.
type User struct {
	UserID        string    `json:"userid" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty"`
	Password      string    `json:"password,omitempty" bson:"password,omitempty"`
	Role          []string  `json:"role,omitempty" bson:"role,omitempty"`
	SocietyID     string    `json:"societyId,omitempty" bson:"societyId,omitempty"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

// Society is a tenant; every other document is scoped by its SocietyID.
type Society struct {
	SocietyID string    `json:"societyId" bson:"societyId"`
	Name      string    `json:"name" bson:"name"`
	Address   string    `json:"address,omitempty" bson:"address,omitempty"`
	City      string    `json:"city,omitempty" bson:"city,omitempty"`
	Blocks    []string  `json:"blocks,omitempty" bson:"blocks,omitempty"`
	AdminID   string    `json:"adminId,omitempty" bson:"adminId,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Notification is a derived admin-facing record summarizing another entity's
// mutation. Append-only; never referenced by other invariants.
type Notification struct {
	NotificationID string    `json:"notificationId" bson:"notificationId"`
	SocietyID      string    `json:"societyId" bson:"societyId"`
	Category       string    `json:"category" bson:"category"` // complaint, booking, ad, notice, poll, group
	Title          string    `json:"title" bson:"title"`
	Message        string    `json:"message" bson:"message"`
	EntityID       string    `json:"entityId,omitempty" bson:"entityId,omitempty"`
	Read           bool      `json:"read" bson:"read"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// NotificationEvent is the outbox payload published to Redis; the worker
// turns it into a persisted Notification.
type NotificationEvent struct {
	SocietyID string `json:"societyId"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	EntityID  string `json:"entityId,omitempty"`
}
