// Package logging builds the slog.Logger shared by coven-chat binaries.
//
// Format "json" selects slog's JSON handler. Anything else selects
// ColorHandler, a single-line colorized format for terminals:
//
//	15:04:05 INF exchange resolved component=conversation kind=reply
package logging
