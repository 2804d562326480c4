package handlers_test

import (
	"bytes"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anonto42/pingup/backend/pkg/webhook"
)

const createdEvent = `{"type":"user.created","data":{"id":"user_wh1","username":"","first_name":"Grace","last_name":"Hopper",` +
	`"image_url":"https://img.example.com/g.png","email_addresses":[{"email_address":"grace@example.com"}]}}`

// signed builds a delivery stamped with the wall clock, which the svix tolerance check uses
func (h *harness) signed(t *testing.T, body, sig string) request {
	t.Helper()
	hdr := http.Header{}
	hdr.Set(webhook.HeaderID, "msg_1")
	ts := time.Now()
	hdr.Set(webhook.HeaderTimestamp, strconv.FormatInt(ts.Unix(), 10))
	if sig == "" {
		var err error
		sig, err = h.verifier.Sign("msg_1", ts, []byte(body))
		require.NoError(t, err)
	}
	hdr.Set(webhook.HeaderSignature, sig)
	return request{
		method:      http.MethodPost,
		path:        "/api/users/webhook",
		body:        bytes.NewBufferString(body),
		contentType: "application/json",
		header:      hdr,
	}
}

func TestWebhook_UserCreated(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, h.signed(t, createdEvent, ""))
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "Webhook processed", body["message"])

	user, err := h.users.GetUserByClerkID(t.Context(), "user_wh1")
	require.NoError(t, err)
	assert.Equal(t, "grace", user.Username)
	assert.Equal(t, "Grace Hopper", user.FullName)
	assert.Equal(t, "grace@example.com", user.Email)
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(t, h.signed(t, createdEvent, "v1,AAAA"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Webhook verification failed", body["message"])

	_, err := h.users.GetUserByClerkID(t.Context(), "user_wh1")
	assert.Error(t, err)
}

func TestWebhook_UnknownEventAcknowledged(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(t, h.signed(t, `{"type":"session.created","data":{}}`, ""))
	assert.Equal(t, http.StatusOK, code)
}
