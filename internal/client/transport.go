package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/talktotext/talktotext/internal/metrics"
)

// maxPathLogLen is the maximum length for logged request paths before truncation.
const maxPathLogLen = 200

// slowRequestThreshold is the duration above which requests are logged at WARN level.
const slowRequestThreshold = 2 * time.Second

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// loggingTransport logs every request with timing and records it in metrics.
type loggingTransport struct {
	next    http.RoundTripper
	logger  *slog.Logger
	metrics *metrics.Collector
}

func newLoggingTransport(next http.RoundTripper, logger *slog.Logger, m *metrics.Collector) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &loggingTransport{next: next, logger: logger, metrics: m}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) == "" {
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}

	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	duration := time.Since(start)

	op := operationFor(req.URL.Path)
	attrs := []any{
		"op", op,
		"method", req.Method,
		"path", truncate(req.URL.Path, maxPathLogLen),
		"request_id", req.Header.Get(RequestIDHeader),
		"duration_ms", duration.Milliseconds(),
	}

	failed := err != nil || resp.StatusCode >= 400
	t.metrics.RecordRequest(op, duration, failed)

	switch {
	case err != nil:
		attrs = append(attrs, "error", err.Error())
		t.logger.Error("request failed", attrs...)
	case resp.StatusCode >= 400:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("request rejected", attrs...)
	case duration > slowRequestThreshold:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Warn("slow request", attrs...)
	default:
		attrs = append(attrs, "status", resp.StatusCode)
		t.logger.Debug("request completed", attrs...)
	}

	return resp, err
}

// operationFor maps an API path to a metrics operation name.
func operationFor(path string) string {
	switch {
	case strings.Contains(path, "/api/auth/login"):
		return metrics.OpLogin
	case strings.Contains(path, "/api/auth/register"):
		return metrics.OpRegister
	case strings.Contains(path, "/api/upload"):
		return metrics.OpUpload
	case strings.Contains(path, "/api/status/"):
		return metrics.OpStatus
	case strings.Contains(path, "/api/notes/"):
		return metrics.OpNote
	case strings.Contains(path, "/api/history"):
		return metrics.OpHistory
	case strings.Contains(path, "/api/download/"):
		return metrics.OpDownload
	default:
		return metrics.OpOther
	}
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
