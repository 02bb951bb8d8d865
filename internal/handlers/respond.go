package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vidcraft/backend/internal/logging"
	"github.com/vidcraft/backend/internal/schema"
)

type errorResponse struct {
	Error  string              `json:"error"`
	Fields []schema.FieldError `json:"fields,omitempty"`
}

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if !writeJSON(ctx, w, status, payload) {
		return
	}

	logger := logging.FromContext(ctx)
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("request failed", "status", status, "response", payload)
	case status >= http.StatusBadRequest:
		logger.Warn("request returned client error", "status", status, "response", payload)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) bool {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return false
	}
	return true
}

func respondError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	respondJSON(ctx, w, status, errorResponse{Error: message})
}

// respondInternal logs the cause once and hides it from the client.
func respondInternal(ctx context.Context, w http.ResponseWriter, message string, err error) {
	logging.FromContext(ctx).Error("request failed", "status", http.StatusInternalServerError, "response", message, "error", err)
	writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: message})
}

// respondDecodeError maps schema.Decode failures to 400 responses.
func respondDecodeError(ctx context.Context, w http.ResponseWriter, err error) {
	var invalid *schema.ValidationError
	if errors.As(err, &invalid) {
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "Invalid input", Fields: invalid.Fields})
		return
	}
	respondError(ctx, w, http.StatusBadRequest, "Malformed JSON body")
}

// pathID parses the {id} wildcard. Any integer is accepted; ids that were
// never issued are left to the store to report as not found.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
