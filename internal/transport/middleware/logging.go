package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeup/novabook/pkg/logger"
)

// maxLoggedBody caps how much of a JSON body is copied into the log.
const maxLoggedBody = 4 << 10

// sensitiveFields are matched as substrings of lowercased keys and headers.
var sensitiveFields = []string{
	"password",
	"token",
	"authorization",
	"secret",
	"api_key",
	"cookie",
	"credential",
}

// RequestLogger logs each request and its response through the request
// scoped logger. Only JSON bodies are logged, with sensitive keys masked.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lg := logger.From(r.Context())

		logRequest(lg, r)

		ww := &bodyWriter{statusWriter: statusWriter{ResponseWriter: w}}
		next.ServeHTTP(ww, r)

		logResponse(r.Context(), lg, ww, time.Since(start))
	})
}

// bodyWriter keeps the head of a JSON response for logging.
type bodyWriter struct {
	statusWriter
	body bytes.Buffer
}

func (bw *bodyWriter) Write(b []byte) (int, error) {
	if bw.body.Len() < maxLoggedBody && isJSON(bw.Header().Get("Content-Type")) {
		bw.body.Write(b[:min(len(b), maxLoggedBody-bw.body.Len())])
	}
	return bw.statusWriter.Write(b)
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json")
}

func logRequest(lg *slog.Logger, r *http.Request) {
	var body string
	if r.Body != nil && isJSON(r.Header.Get("Content-Type")) {
		raw, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(raw))
		body = filterSensitiveBody(raw[:min(len(raw), maxLoggedBody)])
	}

	lg.Info("incoming request",
		"method", r.Method,
		"path", r.URL.Path,
		"query", r.URL.RawQuery,
		"remote_addr", r.RemoteAddr,
		"user_agent", r.UserAgent(),
		"headers", filterSensitiveHeaders(r.Header),
		"body", body,
	)
}

func logResponse(ctx context.Context, lg *slog.Logger, bw *bodyWriter, duration time.Duration) {
	statusCode := bw.status()

	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	lg.Log(ctx, level, "response",
		"status_code", statusCode,
		"duration_ms", duration.Milliseconds(),
		"body", filterSensitiveBody(bw.body.Bytes()),
	)
}

func isSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitive(name) {
			filtered[name] = "[FILTERED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

// filterSensitiveBody masks sensitive keys of a JSON document. Anything that
// does not parse is dropped rather than logged raw.
func filterSensitiveBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return "[UNPARSED]"
	}

	out, err := json.Marshal(filterSensitiveJSON(data))
	if err != nil {
		return "[UNPARSED]"
	}
	return string(out)
}

func filterSensitiveJSON(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		filtered := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				filtered[key] = "[FILTERED]"
				continue
			}
			filtered[key] = filterSensitiveJSON(value)
		}
		return filtered
	case []interface{}:
		filtered := make([]interface{}, len(v))
		for i, item := range v {
			filtered[i] = filterSensitiveJSON(item)
		}
		return filtered
	default:
		return v
	}
}
