package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/myze/momentum/internal/engine"
	"github.com/myze/momentum/internal/refresh"
	"github.com/myze/momentum/pkg/logger"
)

// SnapshotProvider exposes the latest derived snapshot.
type SnapshotProvider interface {
	Snapshot() *refresh.Snapshot
}

// MomentumHandler serves the momentum bucket endpoints.
type MomentumHandler struct {
	provider SnapshotProvider
	logger   *logger.Logger
}

// NewMomentumHandler creates a new momentum handler.
func NewMomentumHandler(provider SnapshotProvider, log *logger.Logger) *MomentumHandler {
	return &MomentumHandler{provider: provider, logger: log}
}

// bucketResponse is the envelope the widget consumes. The bucket not
// requested is omitted.
type bucketResponse struct {
	MarketStatus string                  `json:"market_status"`
	Note         string                  `json:"note"`
	Timestamp    int64                   `json:"timestamp"`
	HighFloat    []engine.MomentumRecord `json:"high_float,omitempty"`
	LowFloat     []engine.MomentumRecord `json:"low_float,omitempty"`
}

// GetBucket returns the latest snapshot for one bucket selector.
// GET /momentum/{bucket} with bucket one of low|high|raw
func (h *MomentumHandler) GetBucket(w http.ResponseWriter, r *http.Request) {
	bucket := mux.Vars(r)["bucket"]

	snap := h.provider.Snapshot()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, "No snapshot available yet")
		return
	}

	resp := bucketResponse{
		MarketStatus: snap.MarketStatus,
		Note:         snap.Note,
		Timestamp:    snap.Timestamp,
	}

	switch bucket {
	case "high":
		resp.HighFloat = snap.HighFloat
	case "low":
		resp.LowFloat = snap.LowFloat
	case "raw":
		resp.HighFloat = snap.HighFloat
		resp.LowFloat = snap.LowFloat
	default:
		respondError(w, http.StatusBadRequest, "Invalid bucket (must be 'low', 'high' or 'raw')")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
