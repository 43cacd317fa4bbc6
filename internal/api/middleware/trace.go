package middleware

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/recall-api/internal/api/shared"
)

// TraceHeader carries the request's trace ID back to the client so error
// reports can be matched against server logs.
const TraceHeader = "X-Trace-ID"

// TraceMiddleware assigns every request a trace ID, stores it in the request
// context, and echoes it in the response headers. It must run before any
// middleware that logs or writes error responses, since both pull the trace
// ID from the context.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())
		traceID := shared.GetTraceID(ctx)
		w.Header().Set(TraceHeader, traceID)

		slog.Debug("incoming request",
			slog.String("trace_id", traceID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
