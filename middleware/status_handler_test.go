/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/acronis/go-appkit/config"

	"github.com/acronis/go-ratelimit/fixedwindow"
)

func TestRateLimitStatusHandler(t *testing.T) {
	limiter, err := fixedwindow.New(&fixedwindow.Config{
		ReadLimit:  2,
		WriteLimit: 1,
		Window:     config.TimeDuration(time.Minute),
	}, nil)
	require.NoError(t, err)

	require.True(t, limiter.TryAcquireRead())
	require.True(t, limiter.TryAcquireWrite())

	handler := RateLimitStatusHandler(limiter)

	getStatus := func(t *testing.T) RateLimitStatusResponse {
		t.Helper()
		respRec := httptest.NewRecorder()
		handler.ServeHTTP(respRec, httptest.NewRequest(http.MethodGet, "/rate-limit-status", nil))
		require.Equal(t, http.StatusOK, respRec.Code)
		require.Equal(t, "application/json", respRec.Header().Get("Content-Type"))
		var status RateLimitStatusResponse
		require.NoError(t, json.Unmarshal(respRec.Body.Bytes(), &status))
		return status
	}

	status := getStatus(t)
	require.Equal(t, 1, status.ReadCount)
	require.Equal(t, 1, status.WriteCount)
	require.Equal(t, 1, status.ReadRemaining)
	require.Equal(t, 0, status.WriteRemaining)
	require.Greater(t, status.WindowResetMs, int64(0))
	require.LessOrEqual(t, status.WindowResetMs, time.Minute.Milliseconds())

	// The status handler consumes no budget.
	for i := 0; i < 10; i++ {
		_ = getStatus(t)
	}
	status = getStatus(t)
	require.Equal(t, 1, status.ReadCount)
	require.Equal(t, 1, status.WriteCount)
}
