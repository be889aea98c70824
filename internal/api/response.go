package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, payload any, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		if logger != nil {
			logger.Errorw("failed to encode response", "err", err)
		}
	}
}

func writeHTML(w http.ResponseWriter, status int, body []byte, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		if logger != nil {
			logger.Warnw("failed to write response", "err", err)
		}
	}
}

// writeRenderError replies 500. The cause is only exposed when debug is set.
func writeRenderError(w http.ResponseWriter, err error, debug bool) {
	msg := http.StatusText(http.StatusInternalServerError)
	if debug && err != nil {
		msg += ": " + err.Error()
	}
	http.Error(w, msg, http.StatusInternalServerError)
}
