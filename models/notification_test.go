package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteNotificationsRequestIDs(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"single string", `{"notificationIds":"n1","userId":"u1"}`, []string{"n1"}},
		{"array", `{"notificationIds":["n1","n2"],"userId":"u1"}`, []string{"n1", "n2"}},
		{"empty string", `{"notificationIds":"","userId":"u1"}`, nil},
		{"empty array", `{"notificationIds":[],"userId":"u1"}`, []string{}},
		{"mixed types skipped", `{"notificationIds":["n1",42,null,"n2"],"userId":"u1"}`, []string{"n1", "n2"}},
		{"absent", `{"userId":"u1"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req DeleteNotificationsRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, req.IDs())
		})
	}
}

func TestDeleteNotificationsRequestIDsFromStringSlice(t *testing.T) {
	req := DeleteNotificationsRequest{NotificationIDs: []string{"n1", "n2"}}
	assert.Equal(t, []string{"n1", "n2"}, req.IDs())
}

func TestProfileFindNotification(t *testing.T) {
	profile := Profile{
		Notifications: []Notification{
			{ID: "n1", Type: NotificationTypeMessage},
			{ID: "n2", Type: NotificationTypeBookingRequest},
		},
	}

	found := profile.FindNotification("n2")
	require.NotNil(t, found)
	assert.Equal(t, NotificationTypeBookingRequest, found.Type)

	assert.Nil(t, profile.FindNotification("missing"))
	assert.Nil(t, (&Profile{}).FindNotification("n1"))
}

func TestNotificationRequestWireFieldNames(t *testing.T) {
	// The receiver field is spelled "reciever_id" on the wire; clients depend
	// on the misspelling.
	var req NotificationRequest
	body := `{"reciever_id":"u2","sender_id":"u1","type":"message","content":"hi"}`
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, "u2", req.RecieverID)
	assert.Equal(t, "u1", req.SenderID)
}
