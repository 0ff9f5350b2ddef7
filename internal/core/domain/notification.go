// internal/core/domain/notification.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates the events users get notified about.
type NotificationType string

const (
	NotificationMessage            NotificationType = "message"
	NotificationFriendRequest      NotificationType = "friend_request"
	NotificationPublicationComment NotificationType = "publication_comment"
	NotificationPublicationLike    NotificationType = "publication_like"
	NotificationItineraryComment   NotificationType = "itinerary_comment"
	NotificationItineraryRating    NotificationType = "itinerary_rating"
	NotificationReport             NotificationType = "report"
)

// IsValid reports whether t is a known notification type.
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationMessage, NotificationFriendRequest, NotificationPublicationComment,
		NotificationPublicationLike, NotificationItineraryComment, NotificationItineraryRating,
		NotificationReport:
		return true
	}
	return false
}

// NotificationStatus is the read state of a notification.
type NotificationStatus string

const (
	NotificationSeen    NotificationStatus = "SEEN"
	NotificationNotSeen NotificationStatus = "NOT SEEN"
)

// IsValid reports whether s is a known notification status.
func (s NotificationStatus) IsValid() bool {
	return s == NotificationSeen || s == NotificationNotSeen
}

// NotificationConfig holds delivery preferences.
type NotificationConfig struct {
	Email bool `json:"email"`
}

// Notification is both the stored record and the queue payload.
type Notification struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"userId"`
	Config             NotificationConfig `json:"config"`
	Type               NotificationType   `json:"type"`
	ResourceID         string             `json:"resourceId"`
	NotificationStatus NotificationStatus `json:"notificationStatus"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Validate performs domain validation on the notification
func (n *Notification) Validate() error {
	v := &ValidationError{}
	if n.UserID == "" {
		v.Add("userId", "is required")
	}
	if !n.Type.IsValid() {
		v.Add("type", "is not a known notification type")
	}
	if n.NotificationStatus == "" {
		n.NotificationStatus = NotificationNotSeen
	}
	if !n.NotificationStatus.IsValid() {
		v.Add("notificationStatus", "must be SEEN or NOT SEEN")
	}
	return v.OrNil()
}

// PrepareForStorage prepares the notification for database storage
func (n *Notification) PrepareForStorage() {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = now
}

// DeliveryOutcome reports whether a notification reached the queue immediately.
type DeliveryOutcome string

const (
	DeliveryDelivered DeliveryOutcome = "delivered"
	DeliveryDeferred  DeliveryOutcome = "deferred"
)
