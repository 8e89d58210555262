/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	appkitmw "github.com/acronis/go-appkit/httpserver/middleware"
	"github.com/acronis/go-appkit/log"
	"github.com/acronis/go-appkit/restapi"

	"github.com/acronis/go-ratelimit/fixedwindow"
)

// RateLimitErrCode is an error code that is used in a response body
// if the request is rejected by the middleware that limits the rate of HTTP requests.
const RateLimitErrCode = "tooManyRequests"

// RateLimitLogFieldOperation is the name of the logged field that contains the budget
// (read or write) against which the rejected request was counted.
const RateLimitLogFieldOperation = "rate_limit_operation"

const userAgentLogFieldKey = "user_agent"

// RateLimitParams contains data that relates to the rate limiting procedure
// and could be used for rejecting or handling an occurred error.
type RateLimitParams struct {
	ErrDomain           string
	ResponseStatusCode  int
	GetRetryAfter       RateLimitGetRetryAfterFunc
	Operation           fixedwindow.Operation
	Remaining           int
	EstimatedRetryAfter time.Duration
}

// RateLimitGetRetryAfterFunc is a function that is called to get a value for Retry-After response HTTP header
// when the rate limit is exceeded.
type RateLimitGetRetryAfterFunc func(r *http.Request, estimatedTime time.Duration) time.Duration

// RateLimitOnRejectFunc is a function that is called for rejecting HTTP request when the rate limit is exceeded.
type RateLimitOnRejectFunc func(
	rw http.ResponseWriter, r *http.Request, params RateLimitParams, next http.Handler, logger log.FieldLogger)

// RateLimitGetOperationFunc is a function that classifies the request as a read or write acquisition.
type RateLimitGetOperationFunc func(r *http.Request) fixedwindow.Operation

type rateLimitHandler struct {
	next           http.Handler
	limiter        *fixedwindow.Limiter
	getOperation   RateLimitGetOperationFunc
	errDomain      string
	respStatusCode int
	getRetryAfter  RateLimitGetRetryAfterFunc

	onReject RateLimitOnRejectFunc
}

func (h *rateLimitHandler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	op := h.getOperation(r)
	var res fixedwindow.Result
	if op == fixedwindow.OperationWrite {
		res = h.limiter.AcquireWrite()
	} else {
		res = h.limiter.AcquireRead()
	}

	if res.Allowed {
		h.next.ServeHTTP(rw, r)
		return
	}

	params := RateLimitParams{
		ErrDomain:           h.errDomain,
		ResponseStatusCode:  h.respStatusCode,
		GetRetryAfter:       h.getRetryAfter,
		Operation:           op,
		Remaining:           res.Remaining,
		EstimatedRetryAfter: res.RetryAfter,
	}
	h.onReject(rw, r, params, h.next, appkitmw.GetLoggerFromContext(r.Context()))
}

// RateLimitOpts represents an options for the RateLimit middleware.
type RateLimitOpts struct {
	GetOperation       RateLimitGetOperationFunc
	ResponseStatusCode int
	GetRetryAfter      RateLimitGetRetryAfterFunc
	DryRun             bool

	OnReject         RateLimitOnRejectFunc
	OnRejectInDryRun RateLimitOnRejectFunc

	// MetricsCollector is a collector of metrics for rejected requests.
	// If it's not set, metrics will not be collected.
	MetricsCollector MetricsCollector
}

// RateLimit is a middleware that limits the rate of HTTP requests against the read or
// write budget of the passed limiter. Safe HTTP methods (GET, HEAD, OPTIONS) consume
// the read budget, all other methods consume the write budget.
func RateLimit(limiter *fixedwindow.Limiter, errDomain string) func(next http.Handler) http.Handler {
	return RateLimitWithOpts(limiter, errDomain, RateLimitOpts{GetRetryAfter: GetRetryAfterEstimatedTime})
}

// RateLimitWithOpts is a configurable version of a middleware to limit the rate of HTTP requests.
func RateLimitWithOpts(
	limiter *fixedwindow.Limiter, errDomain string, opts RateLimitOpts,
) func(next http.Handler) http.Handler {
	respStatusCode := opts.ResponseStatusCode
	if respStatusCode == 0 {
		respStatusCode = http.StatusTooManyRequests
	}
	getOperation := opts.GetOperation
	if getOperation == nil {
		getOperation = DefaultRateLimitGetOperation
	}

	return func(next http.Handler) http.Handler {
		return &rateLimitHandler{
			next:           next,
			limiter:        limiter,
			getOperation:   getOperation,
			errDomain:      errDomain,
			respStatusCode: respStatusCode,
			getRetryAfter:  opts.GetRetryAfter,
			onReject:       makeRateLimitOnRejectFunc(opts),
		}
	}
}

// DefaultRateLimitGetOperation treats safe HTTP methods as read acquisitions
// and everything else as write acquisitions.
func DefaultRateLimitGetOperation(r *http.Request) fixedwindow.Operation {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return fixedwindow.OperationRead
	default:
		return fixedwindow.OperationWrite
	}
}

// GetRetryAfterEstimatedTime returns estimated time after that the client may retry the request.
func GetRetryAfterEstimatedTime(_ *http.Request, estimatedTime time.Duration) time.Duration {
	return estimatedTime
}

// DefaultRateLimitOnReject sends HTTP response in a typical go-appkit way when the rate limit is exceeded.
func DefaultRateLimitOnReject(
	rw http.ResponseWriter, r *http.Request, params RateLimitParams, next http.Handler, logger log.FieldLogger,
) {
	if logger != nil {
		logger = logger.With(
			log.String(RateLimitLogFieldOperation, string(params.Operation)),
			log.String(userAgentLogFieldKey, r.UserAgent()),
		)
	}
	if params.GetRetryAfter != nil {
		rw.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(params.GetRetryAfter(r, params.EstimatedRetryAfter).Seconds()))))
	}
	apiErr := restapi.NewError(params.ErrDomain, RateLimitErrCode, "Too many requests.")
	restapi.RespondError(rw, params.ResponseStatusCode, apiErr, logger)
}

// DefaultRateLimitOnRejectInDryRun sends HTTP response in a typical go-appkit way
// when the rate limit is exceeded in the dry-run mode.
func DefaultRateLimitOnRejectInDryRun(
	rw http.ResponseWriter, r *http.Request, params RateLimitParams, next http.Handler, logger log.FieldLogger,
) {
	if logger != nil {
		logger.Warn("too many requests, serving will be continued because of dry run mode",
			log.String(RateLimitLogFieldOperation, string(params.Operation)),
			log.String(userAgentLogFieldKey, r.UserAgent()),
		)
	}
	next.ServeHTTP(rw, r)
}

func makeRateLimitOnRejectFunc(opts RateLimitOpts) RateLimitOnRejectFunc {
	mc := opts.MetricsCollector
	if mc == nil {
		mc = disabledMetricsCollector
	}
	if opts.DryRun {
		onRejectInDryRun := opts.OnRejectInDryRun
		if onRejectInDryRun == nil {
			onRejectInDryRun = DefaultRateLimitOnRejectInDryRun
		}
		return func(
			rw http.ResponseWriter, r *http.Request, params RateLimitParams, next http.Handler, logger log.FieldLogger,
		) {
			mc.IncRateLimitRejects(params.Operation, true)
			onRejectInDryRun(rw, r, params, next, logger)
		}
	}
	onReject := opts.OnReject
	if onReject == nil {
		onReject = DefaultRateLimitOnReject
	}
	return func(
		rw http.ResponseWriter, r *http.Request, params RateLimitParams, next http.Handler, logger log.FieldLogger,
	) {
		mc.IncRateLimitRejects(params.Operation, false)
		onReject(rw, r, params, next, logger)
	}
}
