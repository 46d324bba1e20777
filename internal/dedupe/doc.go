// Package dedupe remembers the result produced for a request key so that a
// retried request gets the same answer instead of being processed twice.
//
// The echo assistant keys its cache by the X-Request-ID header sent with
// every exchange.
package dedupe
