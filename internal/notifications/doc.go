// Package notifications publishes batch milestones to ntfy.
//
// NewService returns a no-op implementation when no topic is configured, so
// callers publish unconditionally. Events carry a small Payload map that the
// ntfy formatter turns into a title, message, tags and priority.
package notifications
