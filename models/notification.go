package models

import (
	"time"
)

// Notification types. The type of a notification decides which booking
// actions are legal against it.
const (
	NotificationTypeMessage         = "message"
	NotificationTypeReply           = "reply"
	NotificationTypeBookingRequest  = "booking-request"
	NotificationTypeBookingApproval = "booking-approval"
	NotificationTypeSystem          = "system"
)

// Notification statuses and booking statuses.
const (
	NotificationStatusUnread = "unread"
	NotificationStatusRead   = "read"

	BookingStatusAccepted  = "accepted"
	BookingStatusDeclined  = "declined"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Notification is embedded in a profile's notifications array. Ids are UUID
// strings; sender and recipient each hold their own independently mutable
// copy of a conversation entry.
type Notification struct {
	ID                string     `json:"_id" bson:"_id"`
	Type              string     `json:"type" bson:"type"`
	SenderID          string     `json:"sender_id" bson:"sender_id"`
	RecipientID       string     `json:"recipient_id,omitempty" bson:"recipient_id,omitempty"`
	Content           string     `json:"content" bson:"content"`
	ListingID         string     `json:"listingId,omitempty" bson:"listingId,omitempty"`
	OriginalMessageID string     `json:"original_message_id,omitempty" bson:"original_message_id,omitempty"`
	IsSent            bool       `json:"is_sent,omitempty" bson:"is_sent,omitempty"`
	Status            string     `json:"status" bson:"status"`
	BookingStatus     string     `json:"booking_status,omitempty" bson:"booking_status,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// EnrichedNotification is the read model returned by GET /profile/notification:
// a notification joined with listing price/photo and sender (and, for sent
// messages, recipient) identity. Nullable fields are pointers so the JSON
// carries explicit nulls the way the frontend expects.
type EnrichedNotification struct {
	ID                string     `json:"_id"`
	Type              string     `json:"type"`
	Content           string     `json:"content"`
	SenderID          string     `json:"sender_id"`
	RecipientID       string     `json:"recipient_id,omitempty"`
	RecipientName     *string    `json:"recipient_name,omitempty"`
	RecipientImage    *string    `json:"recipient_image,omitempty"`
	SenderName        *string    `json:"sender_name"`
	SenderImage       *string    `json:"sender_image"`
	Price             *float64   `json:"price"`
	FirstPhoto        *string    `json:"firstPhoto"`
	ListingID         *string    `json:"listingId"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	OriginalMessageID *string    `json:"original_message_id"`
	IsSent            bool       `json:"is_sent"`
	BookingStatus     *string    `json:"booking_status"`
	UpdatedAt         *time.Time `json:"updated_at"`
}

// NotificationRequest is the body of POST /profile/notification. The
// misspelled reciever_id is the wire contract the frontend sends.
type NotificationRequest struct {
	RecieverID        string `json:"reciever_id"`
	SenderID          string `json:"sender_id" validate:"required"`
	Type              string `json:"type" validate:"required"`
	Content           string `json:"content"`
	ListingID         string `json:"listingId"`
	RecipientID       string `json:"recipient_id"`
	OriginalMessageID string `json:"original_message_id"`
}

// MarkReadRequest is the body of PUT /profile/notification/read. Either a
// single id or a batch may be supplied.
type MarkReadRequest struct {
	NotificationID  string   `json:"notificationId"`
	NotificationIDs []string `json:"notificationIds"`
	UserID          string   `json:"userId" validate:"required"`
}

// DeleteNotificationsRequest is the body of DELETE /profile/notification.
// notificationIds may arrive as a single string or an array.
type DeleteNotificationsRequest struct {
	NotificationIDs interface{} `json:"notificationIds"`
	UserID          string      `json:"userId"`
}

// IDs normalizes notificationIds to a string slice.
func (r *DeleteNotificationsRequest) IDs() []string {
	switch v := r.NotificationIDs.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				ids = append(ids, s)
			}
		}
		return ids
	case []string:
		return v
	}
	return nil
}

// BookingActionRequest is the body of PUT /bookings.
type BookingActionRequest struct {
	NotificationID string `json:"notificationId" validate:"required"`
	UserID         string `json:"userId" validate:"required"`
	Action         string `json:"action" validate:"required"`
}
