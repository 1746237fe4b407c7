package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/controllers"
	"github.com/unistay/unistay_backend/repositories"
)

// RegisterNotificationRoutes sets up notification and booking routes
func RegisterNotificationRoutes(e *echo.Echo, db *mongo.Client, profiles *repositories.ProfileRepository) {
	notificationController := controllers.NewNotificationController(db, profiles)
	bookingController := controllers.NewBookingController(db, profiles)

	e.POST("/profile/notification", notificationController.CreateNotification)
	e.GET("/profile/notification", notificationController.GetNotifications)
	e.PUT("/profile/notification/read", notificationController.MarkRead)
	e.DELETE("/profile/notification", notificationController.DeleteNotifications)

	e.PUT("/bookings", bookingController.HandleBookingAction)
}
