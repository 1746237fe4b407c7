package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type requestValidator struct {
	validator *validator.Validate
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &requestValidator{validator: validator.New()}
	return e
}

func jsonRequest(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := newTestEcho()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCreateNotificationMissingFields(t *testing.T) {
	nc := NewNotificationController(nil, nil)

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing type", `{"sender_id":"u1","reciever_id":"u2"}`, "type and sender_id are required"},
		{"missing sender", `{"type":"message","reciever_id":"u2"}`, "type and sender_id are required"},
		{"plain missing receiver", `{"type":"message","sender_id":"u1","content":"hi"}`, "reciever_id is required"},
		{"reply missing recipient", `{"type":"reply","sender_id":"u1","content":"hi"}`, "recipient_id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := jsonRequest(t, http.MethodPost, "/profile/notification", tt.body)
			require.NoError(t, nc.CreateNotification(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestGetNotificationsRequiresUserID(t *testing.T) {
	nc := NewNotificationController(nil, nil)

	c, rec := jsonRequest(t, http.MethodGet, "/profile/notification", "")
	require.NoError(t, nc.GetNotifications(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "userId is required")
}

func TestMarkReadRequiresAnIDForm(t *testing.T) {
	nc := NewNotificationController(nil, nil)

	c, rec := jsonRequest(t, http.MethodPut, "/profile/notification/read", `{"userId":"u1"}`)
	require.NoError(t, nc.MarkRead(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "notificationId or notificationIds")
}

func TestMarkReadRequiresUserID(t *testing.T) {
	nc := NewNotificationController(nil, nil)

	c, rec := jsonRequest(t, http.MethodPut, "/profile/notification/read", `{"notificationId":"n1"}`)
	require.NoError(t, nc.MarkRead(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "userId is required")
}

func TestDeleteNotificationsValidation(t *testing.T) {
	nc := NewNotificationController(nil, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing ids", `{"userId":"u1"}`},
		{"missing userId", `{"notificationIds":["n1"]}`},
		{"empty array", `{"notificationIds":[],"userId":"u1"}`},
		{"empty string", `{"notificationIds":"","userId":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := jsonRequest(t, http.MethodDelete, "/profile/notification", tt.body)
			require.NoError(t, nc.DeleteNotifications(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
