package controllers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/models"
	"github.com/unistay/unistay_backend/repositories"
	"github.com/unistay/unistay_backend/utils"
)

// ProfileController handles profile reads and multipart profile updates.
type ProfileController struct {
	db       *mongo.Client
	profiles *repositories.ProfileRepository
}

func NewProfileController(db *mongo.Client, profiles *repositories.ProfileRepository) *ProfileController {
	return &ProfileController{db: db, profiles: profiles}
}

// GetProfile handles GET /profile
func (pc *ProfileController) GetProfile(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := pc.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Profile not found"})
		}
		log.Printf("Profile fetch error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to fetch profile"})
	}

	var avatar *string
	if len(profile.Avatar) > 0 {
		uri := utils.ImageDataURI(profile.Avatar)
		avatar = &uri
	}

	view := models.ProfileView{
		Host:            profile.Host,
		Bio:             profile.Bio,
		Avatar:          avatar,
		CreatedAt:       profile.CreatedAt,
		Location:        profile.Location,
		Languages:       profile.Languages,
		Interests:       profile.Interests,
		PhoneNumber:     profile.PhoneNumber,
		IsPhoneVerified: profile.IsPhoneVerified,
	}
	if view.Languages == nil {
		view.Languages = []string{}
	}
	if view.Interests == nil {
		view.Interests = []string{}
	}

	return c.JSON(http.StatusOK, view)
}

// UpdateProfile handles PUT /profile. The body is multipart: a "data" field
// carrying JSON and an optional "avatar" file.
func (pc *ProfileController) UpdateProfile(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId is required"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid multipart form"})
	}

	var data models.ProfileUpdateData
	if values := form.Value["data"]; len(values) > 0 {
		if err := json.Unmarshal([]byte(values[0]), &data); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid data field"})
		}
	}
	if data.UserID != userID {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "userId mismatch between query and form data"})
	}

	update := bson.M{}
	if data.Bio != nil {
		update["bio"] = utils.SanitizeInput(*data.Bio)
	}
	if data.Location != nil {
		update["location"] = utils.SanitizeInput(*data.Location)
	}
	if data.Languages != nil {
		update["languages"] = utils.SanitizeStringArray(*data.Languages)
	}
	if data.Interests != nil {
		update["interests"] = utils.SanitizeStringArray(*data.Interests)
	}
	if data.PhoneNumber != nil {
		update["phone_number"] = utils.SanitizeInput(*data.PhoneNumber)
	}
	if data.IsPhoneVerified != nil {
		update["is_phone_verified"] = *data.IsPhoneVerified
	}

	if files := form.File["avatar"]; len(files) > 0 {
		src, err := files[0].Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Failed to read avatar"})
		}
		avatar, err := utils.ReadAvatar(src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		}
		update["avatar"] = avatar
	}

	if len(update) == 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "No valid fields to update"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := pc.profiles.UpdateFields(ctx, userID, update)
	if err != nil {
		log.Printf("Profile update error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update profile"})
	}
	if result.MatchedCount == 0 {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "Profile not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Profile updated successfully"})
}
