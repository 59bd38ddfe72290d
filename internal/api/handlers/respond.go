package handlers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/wahealth/sca-simulator/pkg/errors"
)

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}

// respondWithAppError maps an application error onto its HTTP status. External
// errors that captured an upstream response proxy the original status and
// body through unchanged.
func respondWithAppError(w http.ResponseWriter, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if appErr.Type == apperrors.ErrorTypeExternal && appErr.UpstreamStatus > 0 && len(appErr.UpstreamBody) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(appErr.UpstreamStatus)
		w.Write(appErr.UpstreamBody)
		return
	}

	status := appErr.HTTPStatus()
	message := appErr.Message
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondWithError(w, status, message)
}
