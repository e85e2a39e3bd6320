package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/skogsprospekt/constants"
	"github.com/joseph-ayodele/skogsprospekt/internal/common"
)

type errorBody struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", constants.ContentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("http.response.encode_failed", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{OK: false, Error: msg})
}

// writeError maps err through common.HTTPStatus. Internal errors are not echoed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := common.HTTPStatus(err)
	log := common.LoggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("http.request.failed", "status", status, "error", err)
	} else {
		log.Warn("http.request.rejected", "status", status, "error", err)
	}
	msg := common.PublicMessage(err)
	if status == http.StatusInternalServerError {
		msg = "Internal error"
	}
	writeJSONError(w, status, msg)
}
