package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RentedListing links a listing a host has rented out to the renter who
// confirmed the booking.
type RentedListing struct {
	ListingID string `json:"listingId" bson:"listingId"`
	RenterID  string `json:"renterId" bson:"renterId"`
}

// Profile model. One per user, created empty at registration. The
// notifications array is the user's inbox; bookmarks, rentals and
// rentedListings hold listing references.
type Profile struct {
	ID              primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	UserID          string             `json:"userId" bson:"userId"`
	Host            string             `json:"host" bson:"host"`
	Bio             string             `json:"bio" bson:"bio"`
	Avatar          []byte             `json:"-" bson:"avatar"`
	Location        string             `json:"location" bson:"location"`
	Languages       []string           `json:"languages" bson:"languages"`
	Interests       []string           `json:"interests" bson:"interests"`
	Notifications   []Notification     `json:"notifications" bson:"notifications"`
	Bookmarks       []string           `json:"bookmarks,omitempty" bson:"bookmarks,omitempty"`
	Rentals         []string           `json:"rentals,omitempty" bson:"rentals,omitempty"`
	RentedListings  []RentedListing    `json:"rentedListings,omitempty" bson:"rentedListings,omitempty"`
	SentReservation bool               `json:"sentReservation,omitempty" bson:"sentReservation,omitempty"`
	PhoneNumber     string             `json:"phone_number" bson:"phone_number"`
	IsPhoneVerified bool               `json:"is_phone_verified" bson:"is_phone_verified"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
}

// FindNotification returns the embedded notification with the given id.
func (p *Profile) FindNotification(notificationID string) *Notification {
	for i := range p.Notifications {
		if p.Notifications[i].ID == notificationID {
			return &p.Notifications[i]
		}
	}
	return nil
}

// ProfileUpdateData is the "data" JSON field of the multipart PUT /profile
// request. Pointers distinguish absent fields from zero values so only the
// provided ones are written.
type ProfileUpdateData struct {
	UserID          string    `json:"userId"`
	Bio             *string   `json:"bio"`
	Location        *string   `json:"location"`
	Languages       *[]string `json:"languages"`
	Interests       *[]string `json:"interests"`
	PhoneNumber     *string   `json:"phone_number"`
	IsPhoneVerified *bool     `json:"is_phone_verified"`
}

// ProfileView is the body of GET /profile. The avatar is materialized into a
// data URI; email is carried for frontend compatibility even though profiles
// do not store one.
type ProfileView struct {
	Email           string    `json:"email"`
	Host            string    `json:"host"`
	Bio             string    `json:"bio"`
	Avatar          *string   `json:"avatar"`
	CreatedAt       time.Time `json:"created_at"`
	Location        string    `json:"location"`
	Languages       []string  `json:"languages"`
	Interests       []string  `json:"interests"`
	PhoneNumber     string    `json:"phone_number"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
}
