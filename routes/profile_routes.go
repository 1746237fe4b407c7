package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/controllers"
	"github.com/unistay/unistay_backend/repositories"
)

// RegisterProfileRoutes sets up profile and bookmark routes
func RegisterProfileRoutes(e *echo.Echo, db *mongo.Client, profiles *repositories.ProfileRepository) {
	profileController := controllers.NewProfileController(db, profiles)
	bookmarkController := controllers.NewBookmarkController(db, profiles)

	e.GET("/profile", profileController.GetProfile)
	e.PUT("/profile", profileController.UpdateProfile)

	e.GET("/bookmarks", bookmarkController.GetBookmarks)
	e.POST("/bookmarks", bookmarkController.AddBookmark)
	e.DELETE("/bookmarks", bookmarkController.RemoveBookmark)
}
