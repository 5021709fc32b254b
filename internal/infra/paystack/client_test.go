package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"maltiti/internal/payment"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, tries uint64) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL, SecretKey: "sk_test", Currency: "GHS", VerifyTries: tries}, nil,
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	)
	require.NoError(t, err)
	return c
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestInitialize_SendsMinorUnitsAndReference(t *testing.T) {
	var got initializeBody
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"u1=o1"}}`))
	}, 1)

	sess, err := c.Initialize(context.Background(), payment.InitializeRequest{
		Amount:      decimal.RequireFromString("125.50"),
		Email:       "ama@example.com",
		Reference:   "u1=o1",
		CallbackURL: "https://shop/confirm-payment/u1/o1",
	})
	require.NoError(t, err)

	assert.Equal(t, "12550", got.Amount)
	assert.Equal(t, "u1=o1", got.Reference)
	assert.Equal(t, "GHS", got.Currency)
	assert.Equal(t, "https://checkout.paystack.com/abc", sess.AuthorizationURL)
	assert.Equal(t, "abc", sess.AccessCode)
}

func TestInitialize_UpstreamMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Duplicate Transaction Reference"}`))
	}, 1)

	_, err := c.Initialize(context.Background(), payment.InitializeRequest{Amount: decimal.NewFromInt(1)})
	require.Error(t, err)
	assert.Equal(t, "Duplicate Transaction Reference", payment.UpstreamMessage(err))
}

func TestInitialize_StatusFalseOn200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}, 1)

	_, err := c.Initialize(context.Background(), payment.InitializeRequest{Amount: decimal.NewFromInt(1)})
	assert.Equal(t, "Invalid key", payment.UpstreamMessage(err))
}

func TestVerify_NormalizesStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/u1=o1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"u1=o1","status":"success","amount":12550,"gateway_response":"Approved"}}`))
	}, 1)

	v, err := c.Verify(context.Background(), "u1=o1")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, v.Status)
	assert.True(t, v.Amount.Equal(decimal.RequireFromString("125.5")))
}

func TestVerify_RetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"status":true,"data":{"reference":"r","status":"failed"}}`))
	}, 3)

	v, err := c.Verify(context.Background(), "r")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, v.Status)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestVerify_DoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}, 3)

	_, err := c.Verify(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "Transaction reference not found", payment.UpstreamMessage(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRefund(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/refund", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "u1=o1", body["transaction"])
		_, _ = w.Write([]byte(`{"status":true,"message":"Refund has been queued for processing","data":{"status":"pending","transaction":{"reference":"u1=o1"}}}`))
	}, 1)

	out, err := c.Refund(context.Background(), "u1=o1")
	require.NoError(t, err)
	assert.Equal(t, "u1=o1", out.Reference)
	assert.Equal(t, "pending", out.Status)
}
