package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unistay/unistay_backend/models"
)

func TestAllowedBookingActions(t *testing.T) {
	tests := []struct {
		notificationType string
		want             []string
	}{
		{models.NotificationTypeBookingRequest, []string{BookingActionAccept, BookingActionDecline}},
		{models.NotificationTypeBookingApproval, []string{BookingActionConfirm, BookingActionCancel}},
		{models.NotificationTypeMessage, nil},
		{models.NotificationTypeReply, nil},
		{models.NotificationTypeSystem, nil},
		{"", nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AllowedBookingActions(tt.notificationType), "type %q", tt.notificationType)
	}
}

func TestValidateBookingAction(t *testing.T) {
	tests := []struct {
		name             string
		notificationType string
		action           string
		wantErr          bool
	}{
		{"accept on request", models.NotificationTypeBookingRequest, BookingActionAccept, false},
		{"decline on request", models.NotificationTypeBookingRequest, BookingActionDecline, false},
		{"confirm on request", models.NotificationTypeBookingRequest, BookingActionConfirm, true},
		{"cancel on request", models.NotificationTypeBookingRequest, BookingActionCancel, true},
		{"confirm on approval", models.NotificationTypeBookingApproval, BookingActionConfirm, false},
		{"cancel on approval", models.NotificationTypeBookingApproval, BookingActionCancel, false},
		{"accept on approval", models.NotificationTypeBookingApproval, BookingActionAccept, true},
		{"any action on message", models.NotificationTypeMessage, BookingActionAccept, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := ValidateBookingAction(tt.notificationType, tt.action)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Contains(t, allowed, tt.action)
			}
		})
	}
}

func TestValidateBookingActionReturnsAllowedSet(t *testing.T) {
	allowed, err := ValidateBookingAction(models.NotificationTypeBookingRequest, BookingActionConfirm)
	require.Error(t, err)
	assert.Equal(t, []string{BookingActionAccept, BookingActionDecline}, allowed)

	allowed, err = ValidateBookingAction("message", BookingActionAccept)
	require.Error(t, err)
	assert.Nil(t, allowed)
}

func TestIsValidBookingAction(t *testing.T) {
	for _, action := range validBookingActions {
		assert.True(t, isValidBookingAction(action))
	}
	assert.False(t, isValidBookingAction("approve"))
	assert.False(t, isValidBookingAction(""))
}

func bookingRequest(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := newTestEcho()
	req := httptest.NewRequest(http.MethodPut, "/bookings", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHandleBookingActionMissingFields(t *testing.T) {
	bc := NewBookingController(nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing action", `{"notificationId":"n1","userId":"u1"}`},
		{"missing userId", `{"notificationId":"n1","action":"accept"}`},
		{"missing notificationId", `{"userId":"u1","action":"accept"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := bookingRequest(t, tt.body)
			require.NoError(t, bc.HandleBookingAction(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandleBookingActionRejectsUnknownAction(t *testing.T) {
	bc := NewBookingController(nil, nil)

	c, rec := bookingRequest(t, `{"notificationId":"n1","userId":"u1","action":"approve"}`)
	require.NoError(t, bc.HandleBookingAction(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid action")
	for _, action := range validBookingActions {
		assert.Contains(t, rec.Body.String(), action)
	}
}
