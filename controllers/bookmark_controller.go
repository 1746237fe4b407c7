package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/config"
	"github.com/unistay/unistay_backend/models"
	"github.com/unistay/unistay_backend/repositories"
)

// BookmarkController manages the bookmarks array embedded in profiles.
type BookmarkController struct {
	db       *mongo.Client
	profiles *repositories.ProfileRepository
}

func NewBookmarkController(db *mongo.Client, profiles *repositories.ProfileRepository) *BookmarkController {
	return &BookmarkController{db: db, profiles: profiles}
}

// AddBookmark handles POST /bookmarks
func (bc *BookmarkController) AddBookmark(c echo.Context) error {
	return bc.updateBookmark(c, true)
}

// RemoveBookmark handles DELETE /bookmarks
func (bc *BookmarkController) RemoveBookmark(c echo.Context) error {
	return bc.updateBookmark(c, false)
}

func (bc *BookmarkController) updateBookmark(c echo.Context, add bool) error {
	userID := c.QueryParam("userId")

	var req models.BookmarkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil || userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId and listingId are required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := bc.profiles.Exists(ctx, userID)
	if err != nil {
		log.Printf("Bookmark operation error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update bookmark"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User profile not found"})
	}

	update := bson.M{"$addToSet": bson.M{"bookmarks": req.ListingID}}
	message := "Bookmark added"
	if !add {
		update = bson.M{"$pull": bson.M{"bookmarks": req.ListingID}}
		message = "Bookmark removed"
	}

	profilesCollection := config.GetCollection(bc.db, "profiles")
	result, err := profilesCollection.UpdateOne(ctx, bson.M{"userId": userID}, update)
	if err != nil {
		log.Printf("Bookmark operation error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update bookmark"})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}

// GetBookmarks handles GET /bookmarks. Each listing carries its photos as
// data URIs and an id alias for the frontend list keys.
func (bc *BookmarkController) GetBookmarks(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listingsCollection := config.GetCollection(bc.db, "listings")
	bucket, err := config.GetPhotoBucket(bc.db)
	if err != nil {
		log.Printf("Bookmarks fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch bookmarks"})
	}

	profile, err := bc.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User profile not found"})
		}
		log.Printf("Bookmarks fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch bookmarks"})
	}

	bookmarked := []bson.M{}
	if len(profile.Bookmarks) > 0 {
		bookmarked, err = findListings(ctx, listingsCollection, bucket, bson.M{"listingId": bson.M{"$in": profile.Bookmarks}})
		if err != nil {
			log.Printf("Bookmarks fetch error: %v", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch bookmarks"})
		}
	}

	for _, listing := range bookmarked {
		listing["id"] = listing["listingId"]
	}

	return c.JSON(http.StatusOK, bookmarked)
}
