package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/internal/week_lock"
	"github.com/klokku/studyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ActionResult is returned for every mutation and for every failure.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

// BadRequest reports a malformed call.
func BadRequest(w http.ResponseWriter, message string, details string) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Details: details})
}

// Success writes a successful ActionResult.
func Success(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, ActionResult{Success: true, Message: message})
}

// Failure converts err into a failed ActionResult. Errors matching one of
// invalid are the caller's fault and answered with 400.
func Failure(w http.ResponseWriter, err error, invalid ...error) {
	status := StatusFor(err, invalid...)
	if status >= http.StatusInternalServerError {
		log.Errorf("request failed: %v", err)
	} else {
		log.Debugf("request rejected: %v", err)
	}
	WriteJSON(w, status, ActionResult{Success: false, Message: err.Error()})
}

func StatusFor(err error, invalid ...error) int {
	for _, target := range invalid {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, user.ErrNoUser):
		return http.StatusForbidden
	case errors.Is(err, docstore.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, week_lock.ErrLockCancelled), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
