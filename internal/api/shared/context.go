package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// ContextKey is the type for values this package stores in a request context.
type ContextKey string

const (
	// LearnerIDContextKey is the context key for the authenticated learner ID
	LearnerIDContextKey ContextKey = "learnerID"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID
	TraceIDLength = 16 // 32 hex characters
)

// SetTraceID derives a context carrying a freshly generated trace ID.
// Middleware installs it so logs and error responses for one request can be
// correlated.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID returns the trace ID stored in ctx, or "" when none is set.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID returns TraceIDLength bytes from the system randomness
// source, hex-encoded.
func generateTraceID() string {
	return traceIDFrom(rand.Reader)
}

// traceIDFrom hex-encodes TraceIDLength bytes read from r. If the read fails
// it degrades to a time-based ID rather than returning a static value, so
// request correlation keeps working while the randomness source is broken.
func traceIDFrom(r io.Reader) string {
	b := make([]byte, TraceIDLength)
	n, err := io.ReadFull(r, b)
	if err != nil {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"bytes_requested", TraceIDLength,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}
	return hex.EncodeToString(b)
}

// fallbackCounter distinguishes fallback IDs minted within the same instant.
var fallbackCounter atomic.Uint32

// generateFallbackTraceID builds a trace ID from the current time and a
// process-wide counter. Not cryptographically random, but unique enough to
// correlate requests until the randomness source recovers.
func generateFallbackTraceID() string {
	b := make([]byte, TraceIDLength)
	binary.BigEndian.PutUint64(b[:8], uint64(time.Now().UnixNano()))
	binary.BigEndian.PutUint32(b[8:12], fallbackCounter.Add(1))
	binary.BigEndian.PutUint32(b[12:16], uint32(time.Now().Unix()))
	return hex.EncodeToString(b)
}
