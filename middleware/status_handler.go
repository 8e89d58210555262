/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"net/http"

	appkitmw "github.com/acronis/go-appkit/httpserver/middleware"
	"github.com/acronis/go-appkit/restapi"

	"github.com/acronis/go-ratelimit/fixedwindow"
)

// RateLimitStatusResponse is the body returned by the rate limit status handler.
type RateLimitStatusResponse struct {
	ReadCount      int   `json:"readCount"`
	WriteCount     int   `json:"writeCount"`
	ReadRemaining  int   `json:"readRemaining"`
	WriteRemaining int   `json:"writeRemaining"`
	WindowResetMs  int64 `json:"windowResetMs"`
}

// RateLimitStatusHandler returns an HTTP handler that reports the current state of the
// passed limiter without consuming any budget. It is intended for diagnostics and
// health endpoints and should be mounted outside the rate limiting middleware.
func RateLimitStatusHandler(limiter *fixedwindow.Limiter) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		status := limiter.Status()
		restapi.RespondJSON(rw, RateLimitStatusResponse{
			ReadCount:      status.ReadCount,
			WriteCount:     status.WriteCount,
			ReadRemaining:  status.ReadRemaining,
			WriteRemaining: status.WriteRemaining,
			WindowResetMs:  status.WindowReset.Milliseconds(),
		}, appkitmw.GetLoggerFromContext(r.Context()))
	})
}
