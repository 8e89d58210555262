/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

// Package middleware provides net/http middleware that limits the rate of HTTP requests
// against the read and write budgets of a fixedwindow.Limiter.
//
// By default safe HTTP methods (GET, HEAD, OPTIONS) consume the read budget and all
// other methods consume the write budget; the classification can be overridden per
// request. Rejected requests receive a Retry-After header and an error response in the
// typical go-appkit format. Rejects can be reported to Prometheus via an optional
// MetricsCollector. A separate non-consuming status handler is provided for
// diagnostics endpoints.
package middleware
