package routes

import (
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/unistay/unistay_backend/controllers"
	"github.com/unistay/unistay_backend/repositories"
)

// RegisterListingRoutes sets up listing routes
func RegisterListingRoutes(e *echo.Echo, db *mongo.Client, profiles *repositories.ProfileRepository) {
	listingController := controllers.NewListingController(db, profiles)

	e.POST("/listings", listingController.CreateListing)
	e.PUT("/listings", listingController.UpdateListing)
	e.GET("/listings", listingController.GetListings)
	e.DELETE("/listings", listingController.DeleteListing)

	e.GET("/listing", listingController.GetListing)
	e.GET("/myListings", listingController.GetMyListings)
	e.GET("/rentals", listingController.GetRentals)
}
