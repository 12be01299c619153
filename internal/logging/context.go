package logging

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
)

// contextKey is a type for context keys used by this package.
type contextKey int

const (
	deliveryIDKey contextKey = iota
)

// GenerateDeliveryID creates a new 16 character hex id.
func GenerateDeliveryID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(b)
}

// WithDeliveryID returns a new context carrying the given delivery id.
func WithDeliveryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, deliveryIDKey, id)
}

// DeliveryIDFromContext extracts the delivery id from the context.
// Returns empty string if none is set.
func DeliveryIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(deliveryIDKey).(string); ok {
		return id
	}
	return ""
}

// LoggerFromContext returns a logger tagged with the delivery id from ctx.
// If no delivery id is in the context, returns the default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := Logger()
	if id := DeliveryIDFromContext(ctx); id != "" {
		logger = logger.With(KeyDeliveryID, id)
	}
	return logger
}
