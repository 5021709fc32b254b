package arkesel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "key"}, nil)
}

func TestSendSMS(t *testing.T) {
	var got smsBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/sms/send", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":"success"}`))
	})

	require.NoError(t, c.SendSMS(context.Background(), "233200000000", "hello"))
	assert.Equal(t, "Maltiti", got.Sender)
	assert.Equal(t, []string{"233200000000"}, got.Recipients)
	assert.Equal(t, "hello", got.Message)
}

func TestSendSMS_Error(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	})

	err := c.SendSMS(context.Background(), "1", "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Invalid API key", apiErr.Message)
}

func TestVerifyOTP(t *testing.T) {
	code := "1100"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/otp/verify", r.URL.Path)
		_, _ = w.Write([]byte(`{"code":"` + code + `","message":"msg"}`))
	})

	ok, _, err := c.VerifyOTP(context.Background(), "233200000000", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	code = "1104"
	ok, msg, err := c.VerifyOTP(context.Background(), "233200000000", "000000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "msg", msg)
}
