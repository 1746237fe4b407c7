package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/unistay/unistay_backend/config"
	"github.com/unistay/unistay_backend/models"
	"github.com/unistay/unistay_backend/repositories"
	"github.com/unistay/unistay_backend/utils"
)

// Booking actions applied to a notification via PUT /bookings.
const (
	BookingActionAccept  = "accept"
	BookingActionDecline = "decline"
	BookingActionConfirm = "confirm"
	BookingActionCancel  = "cancel"
)

var validBookingActions = []string{
	BookingActionAccept, BookingActionDecline, BookingActionConfirm, BookingActionCancel,
}

// AllowedBookingActions returns the action set a notification type admits.
// Only booking-request and booking-approval notifications are actionable.
func AllowedBookingActions(notificationType string) []string {
	switch notificationType {
	case models.NotificationTypeBookingRequest:
		return []string{BookingActionAccept, BookingActionDecline}
	case models.NotificationTypeBookingApproval:
		return []string{BookingActionConfirm, BookingActionCancel}
	}
	return nil
}

// ValidateBookingAction checks an action against a notification type and
// returns the allowed set when the action is rejected.
func ValidateBookingAction(notificationType, action string) (allowed []string, err error) {
	allowed = AllowedBookingActions(notificationType)
	if allowed == nil {
		return nil, fmt.Errorf("invalid notification type")
	}
	for _, a := range allowed {
		if a == action {
			return allowed, nil
		}
	}
	return allowed, fmt.Errorf("action %s not allowed for %s", action, notificationType)
}

// BookingController drives the booking workflow: a booking-request is
// accepted or declined by the listing owner, the resulting booking-approval
// is confirmed or cancelled by the requester. Side effects fan out to the
// counterpart profile and the listing with no transaction across them.
type BookingController struct {
	db       *mongo.Client
	profiles *repositories.ProfileRepository
}

func NewBookingController(db *mongo.Client, profiles *repositories.ProfileRepository) *BookingController {
	return &BookingController{db: db, profiles: profiles}
}

// HandleBookingAction handles PUT /bookings
func (bc *BookingController) HandleBookingAction(c echo.Context) error {
	var req models.BookingActionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "notificationId, userId, and action are required"})
	}

	if !isValidBookingAction(req.Action) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":        "Invalid action",
			"validActions": strings.Join(validBookingActions, ", "),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	profilesCollection := config.GetCollection(bc.db, "profiles")
	listingsCollection := config.GetCollection(bc.db, "listings")

	var profile models.Profile
	err := profilesCollection.FindOne(ctx, bson.M{
		"userId":            req.UserID,
		"notifications._id": req.NotificationID,
	}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User or notification not found"})
		}
		log.Printf("Booking %s error: %v", req.Action, err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to %s booking", req.Action)})
	}

	notification := profile.FindNotification(req.NotificationID)
	if notification == nil {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User or notification not found"})
	}

	if allowed, err := ValidateBookingAction(notification.Type, req.Action); err != nil {
		if allowed == nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid notification type"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":          err.Error(),
			"allowedActions": allowed,
		})
	}

	switch req.Action {
	case BookingActionAccept:
		return bc.accept(ctx, c, profilesCollection, notification, req.UserID, req.NotificationID)
	case BookingActionDecline, BookingActionCancel:
		return bc.withdraw(ctx, c, profilesCollection, listingsCollection, notification, req.UserID, req.NotificationID, req.Action)
	case BookingActionConfirm:
		return bc.confirm(ctx, c, profilesCollection, listingsCollection, notification, req.UserID, req.NotificationID)
	}

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid action for this notification type"})
}

// accept turns a booking-request into a booking-approval addressed back to
// the requester and marks the request itself accepted.
func (bc *BookingController) accept(ctx context.Context, c echo.Context, profiles *mongo.Collection, notification *models.Notification, userID, notificationID string) error {
	senderExists, err := bc.profiles.Exists(ctx, notification.SenderID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Database error"})
	}
	if !senderExists {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Sender not found"})
	}

	approval := models.Notification{
		ID:        uuid.NewString(),
		Type:      models.NotificationTypeBookingApproval,
		SenderID:  userID,
		Content:   notification.Content,
		ListingID: notification.ListingID,
		Status:    models.NotificationStatusUnread,
		CreatedAt: time.Now(),
	}
	if _, err := utils.PushNotification(ctx, profiles, notification.SenderID, approval); err != nil {
		log.Printf("Booking accept error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to accept booking"})
	}

	if err := bc.updateNotification(ctx, profiles, userID, notificationID, models.BookingStatusAccepted); err != nil {
		log.Printf("Booking accept error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Booking accepted, approval sent to sender"})
}

// withdraw covers decline and cancel: the notification is deleted outright
// (no audit trail survives, matching the frontend's expectations), the
// requester's pending-reservation flag is cleared and the listing's candidate
// counter decremented.
func (bc *BookingController) withdraw(ctx context.Context, c echo.Context, profiles, listings *mongo.Collection, notification *models.Notification, userID, notificationID, action string) error {
	result, err := profiles.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$pull": bson.M{"notifications": bson.M{"_id": notificationID}}},
	)
	if err != nil {
		log.Printf("Booking %s error: %v", action, err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to %s booking", action)})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "User not found"})
	}

	if _, err := profiles.UpdateOne(ctx,
		bson.M{"userId": notification.SenderID},
		bson.M{"$set": bson.M{"sentReservation": false}},
	); err != nil {
		log.Printf("Booking %s error clearing sentReservation: %v", action, err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to %s booking", action)})
	}

	if notification.ListingID != "" {
		if _, err := listings.UpdateOne(ctx,
			bson.M{"listingId": notification.ListingID},
			bson.M{"$inc": bson.M{"candidates": -1}},
		); err != nil {
			log.Printf("Booking %s error decrementing candidates: %v", action, err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: fmt.Sprintf("Failed to %s booking", action)})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":      true,
		"message":      fmt.Sprintf("Booking %sed and notification deleted", action),
		"deletedCount": result.ModifiedCount,
	})
}

// confirm finalizes a booking-approval: the rental is recorded on both
// profiles and the listing goes unavailable. Four sequential writes, no
// transaction; a failure mid-sequence leaves the earlier effects applied.
func (bc *BookingController) confirm(ctx context.Context, c echo.Context, profiles, listings *mongo.Collection, notification *models.Notification, userID, notificationID string) error {
	listingID := notification.ListingID
	if listingID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "listingId is required for confirmation"})
	}

	if err := bc.updateNotification(ctx, profiles, userID, notificationID, models.BookingStatusConfirmed); err != nil {
		log.Printf("Booking confirm error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}

	if _, err := profiles.UpdateOne(ctx,
		bson.M{"userId": notification.SenderID},
		bson.M{"$addToSet": bson.M{"rentedListings": models.RentedListing{ListingID: listingID, RenterID: userID}}},
	); err != nil {
		log.Printf("Booking confirm error updating rentedListings: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to confirm booking"})
	}

	if _, err := profiles.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$addToSet": bson.M{"rentals": listingID}},
	); err != nil {
		log.Printf("Booking confirm error updating rentals: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to confirm booking"})
	}

	var listing models.Listing
	if err := listings.FindOne(ctx, bson.M{"listingId": listingID}).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Listing not found"})
		}
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to confirm booking"})
	}

	if _, err := listings.UpdateOne(ctx,
		bson.M{"listingId": listingID},
		bson.M{"$set": bson.M{"unavailable": true}},
	); err != nil {
		log.Printf("Booking confirm error updating listing: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to confirm booking"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Booking confirmed and added to rented listings"})
}

// updateNotification marks the acted-upon notification read with the given
// booking status. Matching zero documents or modifying none means the
// notification was changed or removed underneath us.
func (bc *BookingController) updateNotification(ctx context.Context, profiles *mongo.Collection, userID, notificationID, bookingStatus string) error {
	result, err := profiles.UpdateOne(ctx,
		bson.M{"userId": userID, "notifications._id": notificationID},
		bson.M{"$set": bson.M{
			"notifications.$[elem].status":         models.NotificationStatusRead,
			"notifications.$[elem].booking_status": bookingStatus,
			"notifications.$[elem].updated_at":     time.Now(),
		}},
		options.Update().SetArrayFilters(options.ArrayFilters{
			Filters: []interface{}{bson.M{"elem._id": notificationID}},
		}),
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 || result.ModifiedCount == 0 {
		return fmt.Errorf("notification update failed")
	}
	return nil
}

func isValidBookingAction(action string) bool {
	for _, a := range validBookingActions {
		if a == action {
			return true
		}
	}
	return false
}
