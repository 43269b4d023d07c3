package incidentapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sidzzzzzzzzzzzz/intelligent-incident-triage/internal/triage"
)

// submitRequest is the body of POST /api/v1/predict.
type submitRequest struct {
	Message string `json:"message"`
}

// logEntry is one row of GET /api/v1/logs. Confidence is the stored value,
// not the rounded projection.
type logEntry struct {
	ID         int64   `json:"id"`
	Message    string  `json:"message"`
	Priority   string  `json:"priority"`
	Timestamp  string  `json:"timestamp"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

func toLogEntry(in *triage.Incident) logEntry {
	return logEntry{
		ID:         in.ID,
		Message:    in.Message,
		Priority:   in.Priority,
		Timestamp:  in.CreatedAt.UTC().Format(triage.TimestampLayout),
		Source:     in.Source,
		Confidence: in.Confidence,
	}
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid payload"}`, http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, `{"error":"message is required"}`, http.StatusBadRequest)
		return
	}

	res, err := a.svc.Submit(r.Context(), req.Message)
	if err != nil {
		a.renderSubmitError(w, r, err)
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int64("triage.incident_id", res.ID))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func (a *API) renderSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	var cerr *triage.ClassificationError
	var perr *triage.PersistenceError
	switch {
	case errors.As(err, &cerr):
		a.logger.Error(r.Context(), err, "classification failed")
		http.Error(w, `{"error":"classification_failed"}`, http.StatusInternalServerError)
	case errors.As(err, &perr):
		a.logger.Error(r.Context(), err, "persistence failed")
		http.Error(w, `{"error":"persistence_failed"}`, http.StatusInternalServerError)
	default:
		a.logger.Error(r.Context(), err, "submit failed")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

func (a *API) handleRecentIncidents(w http.ResponseWriter, r *http.Request) {
	// Zero means "the service default"; the Service clamps the cap.
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = n
	}

	incidents, err := a.svc.Recent(r.Context(), limit)
	if err != nil {
		a.logger.Error(r.Context(), err, "failed to list recent incidents")
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	out := make([]logEntry, 0, len(incidents))
	for i := range incidents {
		out = append(out, toLogEntry(&incidents[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
