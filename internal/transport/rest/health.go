package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthUnhealthy HealthStatus = "unhealthy"
)

type HealthResponse struct {
	Status     HealthStatus          `json:"status"`
	CheckedAt  time.Time             `json:"checked_at"`
	Components map[string]CheckEntry `json:"components"`
}

type CheckEntry struct {
	Status     HealthStatus   `json:"status"`
	Message    string         `json:"message,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CheckedAt  time.Time      `json:"checked_at"`
	DurationMs int64          `json:"duration_ms"`
}

type HealthHandler struct {
	db      *sql.DB
	timeout time.Duration
}

func NewHealthHandler(db *sql.DB) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second}
}

// pingHandler reports liveness only.
func (h *HealthHandler) pingHandler(w http.ResponseWriter, r *http.Request) {
	writeHealthJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// healthCheckHandler reports readiness: the database must answer a ping.
func (h *HealthHandler) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	db := h.checkDatabase(r.Context())

	resp := HealthResponse{
		Status:     db.Status,
		CheckedAt:  time.Now(),
		Components: map[string]CheckEntry{"database": db},
	}

	statusCode := http.StatusOK
	if resp.Status == HealthUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeHealthJSON(w, statusCode, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) CheckEntry {
	entry := CheckEntry{Status: HealthHealthy}
	if h.db == nil {
		entry.Status = HealthUnhealthy
		entry.Message = "database not configured"
		entry.CheckedAt = time.Now()
		return entry
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	start := time.Now()
	err := h.db.PingContext(ctx)
	entry.CheckedAt = time.Now()
	entry.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		entry.Status = HealthUnhealthy
		entry.Message = err.Error()
		return entry
	}

	stats := h.db.Stats()
	entry.Details = map[string]any{
		"open_connections": stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
	}
	return entry
}

func writeHealthJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
