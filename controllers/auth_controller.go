package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/config"
	"github.com/unistay/unistay_backend/models"
	"github.com/unistay/unistay_backend/utils"
)

// AuthController handles registration and login. Registration is split into
// sendVerification (emails a code, stashes the signup data) and verify
// (consumes the code, creates user and profile).
type AuthController struct {
	db    *mongo.Client
	codes *utils.VerificationStore
}

func NewAuthController(db *mongo.Client, codes *utils.VerificationStore) *AuthController {
	return &AuthController{db: db, codes: codes}
}

// SendVerification handles POST /sendVerification
func (ac *AuthController) SendVerification(c echo.Context) error {
	var req models.SendVerificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "Email, password, firstName, and lastName are required",
		})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid email format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Reject emails that already belong to an account before sending anything
	usersCollection := config.GetCollection(ac.db, "users")
	count, err := usersCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Database error"})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Email already registered"})
	}

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate verification code"})
	}

	pending := utils.PendingSignup{
		Code:      code,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := ac.codes.Put(ctx, email, pending); err != nil {
		log.Printf("Failed to store verification code for %s: %v", email, err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to store verification code"})
	}

	if err := utils.SendVerificationEmail(email, code); err != nil {
		log.Printf("Error sending email: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "Failed to send verification email",
			Details: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Verification email sent"})
}

// Verify handles POST /verify: checks the emailed code and creates the user
// together with an empty profile.
func (ac *AuthController) Verify(c echo.Context) error {
	var req models.VerifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Email and verification code are required"})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid email format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ac.codes.ValidateAttempts(ctx, email); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	}

	pending, ok := ac.codes.Get(ctx, email)
	if !ok || pending.Code != req.Token {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid or incorrect verification code"})
	}
	ac.codes.Delete(ctx, email)

	usersCollection := config.GetCollection(ac.db, "users")
	profilesCollection := config.GetCollection(ac.db, "profiles")

	count, err := usersCollection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Database error"})
	}
	if count > 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Email already registered"})
	}

	now := time.Now()
	user := models.User{
		UserID:    uuid.NewString(),
		Email:     email,
		Password:  pending.Password,
		FirstName: pending.FirstName,
		LastName:  pending.LastName,
		CreatedAt: now,
	}
	if _, err := usersCollection.InsertOne(ctx, user); err != nil {
		log.Printf("Registration error: %v", err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Registration failed"})
	}

	profile := models.Profile{
		UserID:        user.UserID,
		Host:          user.HostName(),
		Languages:     []string{},
		Interests:     []string{},
		Notifications: []models.Notification{},
		CreatedAt:     now,
	}
	if _, err := profilesCollection.InsertOne(ctx, profile); err != nil {
		log.Printf("Profile creation error for %s: %v", user.UserID, err)
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Registration failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "userId": user.UserID})
}

// Login handles POST /login. Credentials are compared as stored; the returned
// userId is the client's identity for every subsequent call.
func (ac *AuthController) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Email and password are required"})
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid email format"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err = config.GetCollection(ac.db, "users").FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil || user.Password != req.Password {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid credentials"})
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "userId": user.UserID})
}
