package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"

	"github.com/unistay/unistay_backend/config"
	"github.com/unistay/unistay_backend/models"
	"github.com/unistay/unistay_backend/repositories"
	"github.com/unistay/unistay_backend/utils"
)

// ListingController handles listing CRUD, photo storage and the per-user
// listing views. Read endpoints decode documents into bson.M so any fields
// the client submitted at creation time come back untouched.
type ListingController struct {
	db       *mongo.Client
	profiles *repositories.ProfileRepository
}

func NewListingController(db *mongo.Client, profiles *repositories.ProfileRepository) *ListingController {
	return &ListingController{db: db, profiles: profiles}
}

// CreateListing handles POST /listings
func (lc *ListingController) CreateListing(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid multipart form"})
	}

	formData := make(map[string]interface{})
	if values := form.Value["data"]; len(values) > 0 {
		if err := json.Unmarshal([]byte(values[0]), &formData); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid listing data"})
		}
	}

	userID, _ := formData["userId"].(string)
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	photoFiles := form.File["photos"]
	if len(photoFiles) > utils.MaxPhotosPerListing {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: fmt.Sprintf("Maximum %d photos allowed per listing", utils.MaxPhotosPerListing),
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	usersCollection := config.GetCollection(lc.db, "users")
	listingsCollection := config.GetCollection(lc.db, "listings")

	var user models.User
	if err := usersCollection.FindOne(ctx, bson.M{"userId": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		}
		log.Printf("Listing creation error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create listing"})
	}

	bucket, err := config.GetPhotoBucket(lc.db)
	if err != nil {
		log.Printf("Listing creation error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create listing"})
	}

	listingID := uuid.NewString()
	photoIDs := make([]string, 0, len(photoFiles))
	for _, fh := range photoFiles {
		if fh.Size > utils.MaxPhotoSize {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: fmt.Sprintf("Photo %s exceeds the %dMB limit", fh.Filename, utils.MaxPhotoSize/(1024*1024)),
			})
		}
		src, err := fh.Open()
		if err != nil {
			log.Printf("Listing creation error opening %s: %v", fh.Filename, err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read photo"})
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			log.Printf("Listing creation error reading %s: %v", fh.Filename, err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to read photo"})
		}

		photoID := uuid.NewString()
		if err := utils.UploadPhoto(bucket, photoID, listingID, userID, data); err != nil {
			log.Printf("Listing creation error storing %s: %v", fh.Filename, err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store photo"})
		}
		photoIDs = append(photoIDs, photoID)
	}

	// Client-submitted fields pass through as-is; the server owns identity,
	// host attribution, photo references and the publication timestamp.
	doc := bson.M{}
	for k, v := range formData {
		doc[k] = v
	}
	doc["userId"] = userID
	doc["listingId"] = listingID
	doc["host"] = user.HostName()
	doc["photos"] = photoIDs
	doc["publishedAt"] = nil
	for field, def := range map[string]interface{}{
		"unpublished": false,
		"unavailable": false,
		"isFavorite":  false,
		"candidates":  0,
	} {
		if _, ok := doc[field]; !ok {
			doc[field] = def
		}
	}

	if _, err := listingsCollection.InsertOne(ctx, doc); err != nil {
		log.Printf("Listing creation error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create listing"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success":   true,
		"listingId": listingID,
		"message":   "Listing created successfully",
	})
}

// UpdateListing handles PUT /listings. The X-Action-Type header selects
// which field of the body applies.
func (lc *ListingController) UpdateListing(c echo.Context) error {
	actionType := c.Request().Header.Get("X-Action-Type")

	var req models.ListingUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "listingId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listingsCollection := config.GetCollection(lc.db, "listings")

	var listing models.Listing
	if err := listingsCollection.FindOne(ctx, bson.M{"listingId": req.ListingID}).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Listing not found"})
		}
		log.Printf("Listing update error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update listing"})
	}

	var updateData bson.M
	switch actionType {
	case models.ActionFavoriteToggle:
		if req.IsFavorite != nil {
			updateData = bson.M{"isFavorite": *req.IsFavorite}
		}
	case models.ActionPublishing:
		if req.Unpublished != nil {
			var publishedAt interface{}
			if !*req.Unpublished {
				publishedAt = time.Now()
			}
			updateData = bson.M{"unpublished": *req.Unpublished, "publishedAt": publishedAt}
		}
	case models.ActionReservationClick:
		if req.Candidates != nil {
			updateData = bson.M{"candidates": *req.Candidates}
		}
	}
	if updateData == nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid action type or missing data"})
	}

	result, err := listingsCollection.UpdateOne(ctx, bson.M{"listingId": req.ListingID}, bson.M{"$set": updateData})
	if err != nil {
		log.Printf("Listing update error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update listing"})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Listing not found"})
	}
	if result.ModifiedCount == 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Listing not updated"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Listing updated"})
}

// GetListings handles GET /listings. Only published, available listings are
// returned, optionally narrowed to a city.
func (lc *ListingController) GetListings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listingsCollection := config.GetCollection(lc.db, "listings")
	bucket, err := config.GetPhotoBucket(lc.db)
	if err != nil {
		log.Printf("Listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listings"})
	}

	query := bson.M{"unpublished": false, "unavailable": false}
	if city := c.QueryParam("city"); city != "" {
		query["location.locationText"] = primitive.Regex{Pattern: city, Options: "i"}
	}

	cursor, err := listingsCollection.Find(ctx, query)
	if err != nil {
		log.Printf("Listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listings"})
	}

	var listings []bson.M
	if err := cursor.All(ctx, &listings); err != nil {
		log.Printf("Listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listings"})
	}

	for _, listing := range listings {
		if err := materializePhotos(bucket, listing); err != nil {
			log.Printf("Listings fetch error: %v", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listings"})
		}
	}
	if listings == nil {
		listings = []bson.M{}
	}

	return c.JSON(http.StatusOK, listings)
}

// GetListing handles GET /listing
func (lc *ListingController) GetListing(c echo.Context) error {
	listingID := c.QueryParam("listingId")
	if listingID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "listingId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	listingsCollection := config.GetCollection(lc.db, "listings")
	bucket, err := config.GetPhotoBucket(lc.db)
	if err != nil {
		log.Printf("Listing fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listing"})
	}

	var listing bson.M
	if err := listingsCollection.FindOne(ctx, bson.M{"listingId": listingID}).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Listing not found"})
		}
		log.Printf("Listing fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listing"})
	}

	if err := materializePhotos(bucket, listing); err != nil {
		log.Printf("Listing fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listing"})
	}

	ownerID, _ := listing["userId"].(string)
	profile, err := lc.profiles.FindByUserID(ctx, ownerID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Profile not found"})
		}
		log.Printf("Listing fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch listing"})
	}

	if len(profile.Avatar) > 0 {
		listing["avatar"] = utils.ImageDataURI(profile.Avatar)
	} else {
		listing["avatar"] = nil
	}

	return c.JSON(http.StatusOK, listing)
}

// DeleteListing handles DELETE /listings. The listing document, its GridFS
// photos, and every profile reference to it go in one pass. The profile
// cleanup is a global updateMany over all profiles.
func (lc *ListingController) DeleteListing(c echo.Context) error {
	listingID := c.QueryParam("listingId")
	if listingID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "listingId query parameter is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := lc.db.Database(config.DatabaseName())
	listingsCollection := db.Collection("listings")
	profilesCollection := db.Collection("profiles")

	var listing models.Listing
	if err := listingsCollection.FindOneAndDelete(ctx, bson.M{"listingId": listingID}).Decode(&listing); err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Listing not found"})
		}
		log.Printf("Listing deletion error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete listing"})
	}

	if len(listing.Photos) > 0 {
		filesCollection := db.Collection("photos.files")
		chunksCollection := db.Collection("photos.chunks")
		for _, photoID := range listing.Photos {
			var file struct {
				ID primitive.ObjectID `bson:"_id"`
			}
			err := filesCollection.FindOne(ctx, bson.M{"filename": photoID}).Decode(&file)
			if err != nil {
				if err == mongo.ErrNoDocuments {
					continue
				}
				log.Printf("Listing deletion error locating photo %s: %v", photoID, err)
				return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete listing"})
			}
			if _, err := filesCollection.DeleteOne(ctx, bson.M{"_id": file.ID}); err != nil {
				log.Printf("Listing deletion error removing photo %s: %v", photoID, err)
				return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete listing"})
			}
			if _, err := chunksCollection.DeleteMany(ctx, bson.M{"files_id": file.ID}); err != nil {
				log.Printf("Listing deletion error removing chunks of %s: %v", photoID, err)
				return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete listing"})
			}
		}
	}

	if _, err := profilesCollection.UpdateMany(ctx, bson.M{}, bson.M{
		"$pull": bson.M{"bookmarks": listingID, "rented": listingID},
	}); err != nil {
		log.Printf("Listing deletion error cleaning profiles: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete listing"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Listing and associated data cleaned up successfully"})
}

// GetMyListings handles GET /myListings. Listings the owner has rented out
// move from the active bucket to the rented one, tagged with the renter.
func (lc *ListingController) GetMyListings(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listingsCollection := config.GetCollection(lc.db, "listings")
	bucket, err := config.GetPhotoBucket(lc.db)
	if err != nil {
		log.Printf("My listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch my listings"})
	}

	profile, err := lc.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User profile not found"})
		}
		log.Printf("My listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch my listings"})
	}

	rentedIDs := make([]string, 0, len(profile.RentedListings))
	renterByListing := make(map[string]string, len(profile.RentedListings))
	for _, r := range profile.RentedListings {
		rentedIDs = append(rentedIDs, r.ListingID)
		renterByListing[r.ListingID] = r.RenterID
	}

	unpublished, err := findListings(ctx, listingsCollection, bucket, bson.M{"userId": userID, "unpublished": true})
	if err != nil {
		log.Printf("My listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch my listings"})
	}
	active, err := findListings(ctx, listingsCollection, bucket, bson.M{
		"userId":      userID,
		"unpublished": false,
		"listingId":   bson.M{"$nin": rentedIDs},
	})
	if err != nil {
		log.Printf("My listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch my listings"})
	}

	rented := []bson.M{}
	if len(rentedIDs) > 0 {
		rented, err = findListings(ctx, listingsCollection, bucket, bson.M{"listingId": bson.M{"$in": rentedIDs}})
		if err != nil {
			log.Printf("My listings fetch error: %v", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch my listings"})
		}
	}

	for _, listing := range unpublished {
		listing["listingType"] = "owned"
	}
	for _, listing := range active {
		listing["listingType"] = "owned"
	}
	for _, listing := range rented {
		listing["listingType"] = "rented"
		if id, ok := listing["listingId"].(string); ok {
			listing["renterId"] = renterByListing[id]
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"unpublished": unpublished,
		"active":      active,
		"rented":      rented,
	})
}

// GetRentals handles GET /rentals, the listings a user is renting from others.
func (lc *ListingController) GetRentals(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	listingsCollection := config.GetCollection(lc.db, "listings")
	bucket, err := config.GetPhotoBucket(lc.db)
	if err != nil {
		log.Printf("Rental listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch rental listings"})
	}

	profile, err := lc.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "User profile not found"})
		}
		log.Printf("Rental listings fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch rental listings"})
	}

	rentals := []bson.M{}
	if len(profile.Rentals) > 0 {
		rentals, err = findListings(ctx, listingsCollection, bucket, bson.M{"listingId": bson.M{"$in": profile.Rentals}})
		if err != nil {
			log.Printf("Rental listings fetch error: %v", err)
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch rental listings"})
		}
	}

	return c.JSON(http.StatusOK, rentals)
}

// findListings runs a listing query and materializes each result's photos.
func findListings(ctx context.Context, collection *mongo.Collection, bucket *gridfs.Bucket, query bson.M) ([]bson.M, error) {
	cursor, err := collection.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var listings []bson.M
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, err
	}
	for _, listing := range listings {
		if err := materializePhotos(bucket, listing); err != nil {
			return nil, err
		}
	}
	if listings == nil {
		listings = []bson.M{}
	}
	return listings, nil
}

// materializePhotos replaces a listing's stored photo ids with inline data
// URIs, preserving upload order.
func materializePhotos(bucket *gridfs.Bucket, listing bson.M) error {
	raw, ok := listing["photos"].(primitive.A)
	if !ok || len(raw) == 0 {
		return nil
	}
	uris := make([]string, 0, len(raw))
	for _, p := range raw {
		photoID, ok := p.(string)
		if !ok {
			continue
		}
		uri, err := utils.DownloadPhotoDataURI(bucket, photoID)
		if err != nil {
			return err
		}
		uris = append(uris, uri)
	}
	listing["photos"] = uris
	return nil
}
