package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"maltiti/internal/config"
	"maltiti/internal/server"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer() *echo.Echo {
	return server.New(config.HTTPConfig{CORSOrigins: []string{"*"}, BodyLimit: "1M"}, zap.NewNop())
}

// Runをgoroutineで起動し、listenし始めるまで待つ
func start(t *testing.T, ctx context.Context, e *echo.Echo) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, e, "127.0.0.1:0", time.Second, zap.NewNop())
	}()
	require.Eventually(t, func() bool { return e.ListenerAddr() != nil }, 2*time.Second, 10*time.Millisecond)
	return done
}

func wait(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
		return nil
	}
}

func TestHealthz(t *testing.T) {
	e := newServer()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	e := newServer()
	ctx, cancel := context.WithCancel(context.Background())
	done := start(t, ctx, e)

	cancel()
	assert.NoError(t, wait(t, done))
}

// 外から閉じられた場合もErrServerClosedはエラーにしない
func TestRun_ClosedServerIsNotAnError(t *testing.T) {
	e := newServer()
	done := start(t, context.Background(), e)

	require.NoError(t, e.Close())
	assert.NoError(t, wait(t, done))
}

func TestRun_ListenErrorIsReturned(t *testing.T) {
	e := newServer()
	err := server.Run(context.Background(), e, "bad-address", time.Second, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}
