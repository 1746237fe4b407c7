package utils

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/models"
)

// NewNotification builds a fresh unread notification document.
func NewNotification(notifType, senderID, content, listingID string) models.Notification {
	return models.Notification{
		ID:        uuid.NewString(),
		Type:      notifType,
		SenderID:  senderID,
		Content:   content,
		ListingID: listingID,
		Status:    models.NotificationStatusUnread,
		CreatedAt: time.Now(),
	}
}

// NewReplyPair builds the two entries a reply fans out into: the message the
// recipient receives, and the sent-item copy kept in the sender's own inbox.
func NewReplyPair(senderID, recipientID, content, originalMessageID, listingID string) (recipient, sender models.Notification) {
	now := time.Now()
	recipient = models.Notification{
		ID:                uuid.NewString(),
		Type:              models.NotificationTypeMessage,
		SenderID:          senderID,
		RecipientID:       recipientID,
		Content:           content,
		OriginalMessageID: originalMessageID,
		ListingID:         listingID,
		Status:            models.NotificationStatusUnread,
		CreatedAt:         now,
	}
	sender = models.Notification{
		ID:                uuid.NewString(),
		Type:              models.NotificationTypeReply,
		SenderID:          senderID,
		RecipientID:       recipientID,
		Content:           content,
		OriginalMessageID: originalMessageID,
		ListingID:         listingID,
		IsSent:            true,
		Status:            models.NotificationStatusRead,
		CreatedAt:         now,
	}
	return recipient, sender
}

// PushNotification appends a notification to the addressed profile's inbox
func PushNotification(ctx context.Context, profiles *mongo.Collection, userID string, notification models.Notification) (*mongo.UpdateResult, error) {
	return profiles.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$push": bson.M{"notifications": notification}},
	)
}
