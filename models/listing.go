package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing is the typed view of a listing document used where specific fields
// are needed (enrichment, deletion, booking side effects). Read endpoints
// decode into bson.M instead so fields the client submitted beyond this set
// survive the round trip unchanged.
type Listing struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ListingID   string             `json:"listingId" bson:"listingId"`
	UserID      string             `json:"userId" bson:"userId"`
	Host        string             `json:"host" bson:"host"`
	Title       string             `json:"title,omitempty" bson:"title,omitempty"`
	Price       float64            `json:"price,omitempty" bson:"price,omitempty"`
	Photos      []string           `json:"photos,omitempty" bson:"photos,omitempty"`
	Unpublished bool               `json:"unpublished" bson:"unpublished"`
	Unavailable bool               `json:"unavailable" bson:"unavailable"`
	Candidates  int                `json:"candidates" bson:"candidates"`
	IsFavorite  bool               `json:"isFavorite" bson:"isFavorite"`
	PublishedAt *time.Time         `json:"publishedAt" bson:"publishedAt"`
}

// Listing update action types, carried in the X-Action-Type header of
// PUT /listings.
const (
	ActionFavoriteToggle   = "handle-favorite-toggle"
	ActionPublishing       = "handle-publishing"
	ActionReservationClick = "handle-reservation-click"
)

// ListingUpdateRequest is the body of PUT /listings. Which field applies
// depends on the X-Action-Type header.
type ListingUpdateRequest struct {
	ListingID   string `json:"listingId" validate:"required"`
	Unpublished *bool  `json:"unpublished"`
	IsFavorite  *bool  `json:"isFavorite"`
	Candidates  *int   `json:"candidates"`
}

// BookmarkRequest is the body of POST/DELETE /bookmarks.
type BookmarkRequest struct {
	ListingID string `json:"listingId" validate:"required"`
}
