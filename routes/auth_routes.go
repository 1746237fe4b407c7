package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/controllers"
	"github.com/unistay/unistay_backend/utils"
)

// RegisterAuthRoutes sets up the signup and login routes
func RegisterAuthRoutes(e *echo.Echo, db *mongo.Client, codes *utils.VerificationStore) {
	authController := controllers.NewAuthController(db, codes)

	e.POST("/sendVerification", authController.SendVerification)
	e.POST("/verify", authController.Verify)
	e.POST("/login", authController.Login)
}
