package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/unistay/unistay_backend/repositories"
)

// The mock deployment answers each command in order, so these tests pin down
// both the write sequence and the exact update documents each booking
// transition issues.

func lookupString(t *testing.T, raw bson.Raw, path ...string) string {
	t.Helper()
	val, err := raw.LookupErr(path...)
	require.NoError(t, err, "missing %v", path)
	s, ok := val.StringValueOK()
	require.True(t, ok, "not a string at %v", path)
	return s
}

func updateCommands(mt *mtest.T) []bson.Raw {
	var updates []bson.Raw
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName == "update" {
			updates = append(updates, bson.Raw(evt.Command))
		}
	}
	return updates
}

func profileWithNotification(userID, notificationType, senderID string) bson.D {
	return bson.D{
		{Key: "userId", Value: userID},
		{Key: "host", Value: "Test Host"},
		{Key: "notifications", Value: bson.A{bson.D{
			{Key: "_id", Value: "n1"},
			{Key: "type", Value: notificationType},
			{Key: "sender_id", Value: senderID},
			{Key: "content", Value: "Booking for l1"},
			{Key: "listingId", Value: "l1"},
			{Key: "status", Value: "unread"},
		}}},
	}
}

func updateSuccess() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1})
}

func TestAcceptPushesApprovalAndMarksRequest(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("accept", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "unistay.profiles", mtest.FirstBatch,
				profileWithNotification("owner-1", "booking-request", "requester-1")),
			mtest.CreateCursorResponse(0, "unistay.profiles", mtest.FirstBatch,
				bson.D{{Key: "n", Value: 1}}),
			updateSuccess(),
			updateSuccess(),
		)

		bc := NewBookingController(mt.Client, repositories.NewProfileRepository(mt.Client))
		c, rec := bookingRequest(mt.T, `{"notificationId":"n1","userId":"owner-1","action":"accept"}`)
		require.NoError(mt, bc.HandleBookingAction(c))
		require.Equal(mt, http.StatusOK, rec.Code)
		assert.Contains(mt, rec.Body.String(), "approval sent to sender")

		updates := updateCommands(mt)
		require.Len(mt, updates, 2)

		// One booking-approval addressed to the original sender
		push := updates[0]
		assert.Equal(mt, "profiles", lookupString(mt.T, push, "update"))
		assert.Equal(mt, "requester-1", lookupString(mt.T, push, "updates", "0", "q", "userId"))
		assert.Equal(mt, "booking-approval", lookupString(mt.T, push, "updates", "0", "u", "$push", "notifications", "type"))
		assert.Equal(mt, "owner-1", lookupString(mt.T, push, "updates", "0", "u", "$push", "notifications", "sender_id"))
		assert.Equal(mt, "unread", lookupString(mt.T, push, "updates", "0", "u", "$push", "notifications", "status"))
		assert.Equal(mt, "l1", lookupString(mt.T, push, "updates", "0", "u", "$push", "notifications", "listingId"))
		assert.Equal(mt, "Booking for l1", lookupString(mt.T, push, "updates", "0", "u", "$push", "notifications", "content"))
		assert.NotEmpty(mt, lookupString(mt.T, push, "updates", "0", "u", "$push", "notifications", "_id"))

		// The acted-upon request flips to read/accepted via array filter
		mark := updates[1]
		assert.Equal(mt, "owner-1", lookupString(mt.T, mark, "updates", "0", "q", "userId"))
		assert.Equal(mt, "read", lookupString(mt.T, mark, "updates", "0", "u", "$set", "notifications.$[elem].status"))
		assert.Equal(mt, "accepted", lookupString(mt.T, mark, "updates", "0", "u", "$set", "notifications.$[elem].booking_status"))
		assert.Equal(mt, "n1", lookupString(mt.T, mark, "updates", "0", "arrayFilters", "0", "elem._id"))
	})
}

func TestConfirmRecordsRentalAndDisablesListing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("confirm", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "unistay.profiles", mtest.FirstBatch,
				profileWithNotification("renter-1", "booking-approval", "owner-1")),
			updateSuccess(),
			updateSuccess(),
			updateSuccess(),
			mtest.CreateCursorResponse(0, "unistay.listings", mtest.FirstBatch,
				bson.D{{Key: "listingId", Value: "l1"}, {Key: "userId", Value: "owner-1"}}),
			updateSuccess(),
		)

		bc := NewBookingController(mt.Client, repositories.NewProfileRepository(mt.Client))
		c, rec := bookingRequest(mt.T, `{"notificationId":"n1","userId":"renter-1","action":"confirm"}`)
		require.NoError(mt, bc.HandleBookingAction(c))
		require.Equal(mt, http.StatusOK, rec.Code)
		assert.Contains(mt, rec.Body.String(), "Booking confirmed")

		updates := updateCommands(mt)
		require.Len(mt, updates, 4)

		// Approval marked read/confirmed on the actor
		assert.Equal(mt, "renter-1", lookupString(mt.T, updates[0], "updates", "0", "q", "userId"))
		assert.Equal(mt, "confirmed", lookupString(mt.T, updates[0], "updates", "0", "u", "$set", "notifications.$[elem].booking_status"))

		// Owner's rentedListings gains {listingId, renterId: actor}
		assert.Equal(mt, "owner-1", lookupString(mt.T, updates[1], "updates", "0", "q", "userId"))
		assert.Equal(mt, "l1", lookupString(mt.T, updates[1], "updates", "0", "u", "$addToSet", "rentedListings", "listingId"))
		assert.Equal(mt, "renter-1", lookupString(mt.T, updates[1], "updates", "0", "u", "$addToSet", "rentedListings", "renterId"))

		// Actor's rentals gains the listing id
		assert.Equal(mt, "renter-1", lookupString(mt.T, updates[2], "updates", "0", "q", "userId"))
		assert.Equal(mt, "l1", lookupString(mt.T, updates[2], "updates", "0", "u", "$addToSet", "rentals"))

		// Listing goes unavailable
		assert.Equal(mt, "listings", lookupString(mt.T, updates[3], "update"))
		assert.Equal(mt, "l1", lookupString(mt.T, updates[3], "updates", "0", "q", "listingId"))
		unavailable, err := updates[3].LookupErr("updates", "0", "u", "$set", "unavailable")
		require.NoError(mt, err)
		flag, ok := unavailable.BooleanOK()
		require.True(mt, ok)
		assert.True(mt, flag)
	})
}

func TestDeclineDeletesNotificationAndDecrementsCandidates(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decline", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "unistay.profiles", mtest.FirstBatch,
				profileWithNotification("owner-1", "booking-request", "requester-1")),
			updateSuccess(),
			updateSuccess(),
			updateSuccess(),
		)

		bc := NewBookingController(mt.Client, repositories.NewProfileRepository(mt.Client))
		c, rec := bookingRequest(mt.T, `{"notificationId":"n1","userId":"owner-1","action":"decline"}`)
		require.NoError(mt, bc.HandleBookingAction(c))
		require.Equal(mt, http.StatusOK, rec.Code)
		assert.Contains(mt, rec.Body.String(), "notification deleted")
		assert.Contains(mt, rec.Body.String(), `"deletedCount":1`)

		updates := updateCommands(mt)
		require.Len(mt, updates, 3)

		// Notification pulled from the actor's inbox, no audit copy kept
		assert.Equal(mt, "owner-1", lookupString(mt.T, updates[0], "updates", "0", "q", "userId"))
		assert.Equal(mt, "n1", lookupString(mt.T, updates[0], "updates", "0", "u", "$pull", "notifications", "_id"))

		// Counterpart's pending-reservation flag cleared
		assert.Equal(mt, "requester-1", lookupString(mt.T, updates[1], "updates", "0", "q", "userId"))
		sentReservation, err := updates[1].LookupErr("updates", "0", "u", "$set", "sentReservation")
		require.NoError(mt, err)
		flag, ok := sentReservation.BooleanOK()
		require.True(mt, ok)
		assert.False(mt, flag)

		// Listing candidate counter decremented atomically
		assert.Equal(mt, "listings", lookupString(mt.T, updates[2], "update"))
		assert.Equal(mt, "l1", lookupString(mt.T, updates[2], "updates", "0", "q", "listingId"))
		inc, err := updates[2].LookupErr("updates", "0", "u", "$inc", "candidates")
		require.NoError(mt, err)
		delta, ok := inc.AsInt64OK()
		require.True(mt, ok)
		assert.Equal(mt, int64(-1), delta)
	})
}
