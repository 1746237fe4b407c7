package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unistay/unistay_backend/config"
	"github.com/unistay/unistay_backend/models"
	"github.com/unistay/unistay_backend/repositories"
	"github.com/unistay/unistay_backend/utils"
)

// NotificationController owns the per-profile inbox: creating entries (with
// reply fan-out), the enriched read model, mark-read and delete.
type NotificationController struct {
	db       *mongo.Client
	profiles *repositories.ProfileRepository
}

func NewNotificationController(db *mongo.Client, profiles *repositories.ProfileRepository) *NotificationController {
	return &NotificationController{db: db, profiles: profiles}
}

// CreateNotification handles POST /profile/notification. A reply fans out
// into exactly two writes: the recipient's message and the sender's sent-item
// copy. There is no atomicity across the two pushes.
func (nc *NotificationController) CreateNotification(c echo.Context) error {
	var req models.NotificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "type and sender_id are required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profilesCollection := config.GetCollection(nc.db, "profiles")

	if req.Type == models.NotificationTypeReply {
		if req.RecipientID == "" {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "recipient_id is required for replies"})
		}
		recipientExists, err := nc.profiles.Exists(ctx, req.RecipientID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Database error"})
		}
		senderExists, err := nc.profiles.Exists(ctx, req.SenderID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Database error"})
		}
		if !recipientExists || !senderExists {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		}

		recipientCopy, senderCopy := utils.NewReplyPair(
			req.SenderID, req.RecipientID, req.Content, req.OriginalMessageID, req.ListingID)

		if _, err := utils.PushNotification(ctx, profilesCollection, req.RecipientID, recipientCopy); err != nil {
			log.Printf("Notification add error: %v", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to add notification"})
		}
		if _, err := utils.PushNotification(ctx, profilesCollection, req.SenderID, senderCopy); err != nil {
			log.Printf("Notification add error: %v", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to add notification"})
		}

		return c.JSON(http.StatusOK, echo.Map{"success": true})
	}

	if req.RecieverID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "reciever_id is required"})
	}
	exists, err := nc.profiles.Exists(ctx, req.RecieverID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Database error"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
	}

	notification := utils.NewNotification(req.Type, req.SenderID, req.Content, req.ListingID)
	if _, err := utils.PushNotification(ctx, profilesCollection, req.RecieverID, notification); err != nil {
		log.Printf("Notification add error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to add notification"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// GetNotifications handles GET /profile/notification: every entry is joined
// with listing price/first photo and sender identity, and for sent messages
// also the recipient identity. Lookups run per notification with no batching.
func (nc *NotificationController) GetNotifications(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	profile, err := nc.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Profile not found"})
		}
		log.Printf("Notification fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch notifications"})
	}

	bucket, err := config.GetPhotoBucket(nc.db)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to open photo storage"})
	}

	enriched := make([]models.EnrichedNotification, 0, len(profile.Notifications))
	for i := range profile.Notifications {
		enriched = append(enriched, nc.enrich(ctx, bucket, &profile.Notifications[i]))
	}

	return c.JSON(http.StatusOK, enriched)
}

// enrich resolves the listing and profile references a notification carries.
// Enrichment failures degrade to nulls rather than failing the whole fetch.
func (nc *NotificationController) enrich(ctx context.Context, bucket *gridfs.Bucket, n *models.Notification) models.EnrichedNotification {
	out := models.EnrichedNotification{
		ID:        n.ID,
		Type:      n.Type,
		Content:   n.Content,
		SenderID:  n.SenderID,
		Status:    n.Status,
		CreatedAt: n.CreatedAt,
		IsSent:    n.IsSent,
		UpdatedAt: n.UpdatedAt,
	}
	if n.ListingID != "" {
		out.ListingID = &n.ListingID
	}
	if n.OriginalMessageID != "" {
		out.OriginalMessageID = &n.OriginalMessageID
	}
	if n.BookingStatus != "" {
		out.BookingStatus = &n.BookingStatus
	}

	if n.ListingID != "" {
		var listing models.Listing
		err := config.GetCollection(nc.db, "listings").FindOne(ctx, bson.M{"listingId": n.ListingID}).Decode(&listing)
		if err == nil {
			if listing.Price != 0 {
				out.Price = &listing.Price
			}
			if len(listing.Photos) > 0 {
				if uri, err := utils.DownloadPhotoDataURI(bucket, listing.Photos[0]); err == nil {
					out.FirstPhoto = &uri
				} else {
					log.Printf("Error loading first photo for listing %s: %v", n.ListingID, err)
				}
			}
		}
	}

	if n.SenderID != "" {
		if sender, err := nc.profiles.FindByUserID(ctx, n.SenderID); err == nil {
			out.SenderName = &sender.Host
			if len(sender.Avatar) > 0 {
				uri := utils.ImageDataURI(sender.Avatar)
				out.SenderImage = &uri
			}
		}
	}

	if (n.Type == models.NotificationTypeMessage || n.Type == models.NotificationTypeReply) && n.IsSent {
		out.RecipientID = n.RecipientID
		if recipient, err := nc.profiles.FindByUserID(ctx, n.RecipientID); err == nil {
			out.RecipientName = &recipient.Host
			if len(recipient.Avatar) > 0 {
				uri := utils.ImageDataURI(recipient.Avatar)
				out.RecipientImage = &uri
			}
		}
	}

	return out
}

// MarkRead handles PUT /profile/notification/read for a single id or a batch.
func (nc *NotificationController) MarkRead(c echo.Context) error {
	var req models.MarkReadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	var filter, arrayFilter bson.M
	switch {
	case req.NotificationID != "":
		filter = bson.M{"userId": req.UserID, "notifications._id": req.NotificationID}
		arrayFilter = bson.M{"elem._id": req.NotificationID}
	case len(req.NotificationIDs) > 0:
		filter = bson.M{"userId": req.UserID, "notifications._id": bson.M{"$in": req.NotificationIDs}}
		arrayFilter = bson.M{"elem._id": bson.M{"$in": req.NotificationIDs}}
	default:
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request: Provide notificationId or notificationIds"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(nc.db, "profiles").UpdateOne(ctx,
		filter,
		bson.M{"$set": bson.M{
			"notifications.$[elem].status":     models.NotificationStatusRead,
			"notifications.$[elem].updated_at": time.Now(),
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{Filters: []interface{}{arrayFilter}}),
	)
	if err != nil {
		log.Printf("Notification read error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to mark notifications as read"})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User or notifications not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "updatedCount": result.ModifiedCount})
}

// DeleteNotifications handles DELETE /profile/notification. Pulling an id
// that is already gone succeeds with deletedCount 0.
func (nc *NotificationController) DeleteNotifications(c echo.Context) error {
	var req models.DeleteNotificationsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if req.NotificationIDs == nil || req.UserID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "notificationIds and userId are required"})
	}

	ids := req.IDs()
	if len(ids) == 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "notificationIds cannot be empty"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.GetCollection(nc.db, "profiles").UpdateOne(ctx,
		bson.M{"userId": req.UserID},
		bson.M{"$pull": bson.M{"notifications": bson.M{"_id": bson.M{"$in": ids}}}},
	)
	if err != nil {
		log.Printf("Notification delete error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete notifications"})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "deletedCount": result.ModifiedCount})
}
