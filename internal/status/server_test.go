package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSessions int

func (f fixedSessions) ActiveCount() int { return int(f) }

type stubBalances struct {
	balances map[string]int64
	err      error
}

func (s stubBalances) GetBalance(_ context.Context, userID string) (int64, bool, error) {
	if s.err != nil {
		return 0, false, s.err
	}
	balance, ok := s.balances[userID]
	return balance, ok, nil
}

func serve(t *testing.T, router *gin.Engine, path string) (int, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestStatusRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(fixedSessions(3), stubBalances{balances: map[string]int64{"alice": 900, "broke": 0}}, logging.Discard())

	testCases := []struct {
		name   string
		path   string
		code   int
		expect map[string]interface{}
	}{
		{name: "health", path: "/healthz", code: http.StatusOK, expect: map[string]interface{}{"status": "ok"}},
		{name: "sessions", path: "/sessions", code: http.StatusOK, expect: map[string]interface{}{"active": float64(3)}},
		{name: "wallet", path: "/wallets/alice", code: http.StatusOK, expect: map[string]interface{}{"user_id": "alice", "balance": float64(900)}},
		{name: "zero balance is found", path: "/wallets/broke", code: http.StatusOK, expect: map[string]interface{}{"user_id": "broke", "balance": float64(0)}},
		{name: "missing wallet", path: "/wallets/bob", code: http.StatusNotFound, expect: map[string]interface{}{"error": "wallet not found"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := serve(t, router, tc.path)

			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.expect, body)
		})
	}
}

func TestWalletLookupFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := SetupRouter(fixedSessions(0), stubBalances{err: errors.New("db locked")}, logging.Discard())

	code, body := serve(t, router, "/wallets/alice")

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "balance lookup failed", body["error"])
}

func TestServerStopsWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer("127.0.0.1:0", fixedSessions(0), stubBalances{}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
