// Package middleware provides gin middleware for the mode manager HTTP API:
// CORS through gin-contrib/cors and token bucket rate limiting through
// golang.org/x/time/rate.
package middleware
