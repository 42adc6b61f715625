package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInvalidThing = errors.New("invalid thing")

func TestFailure(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"storage failure is unavailable", fmt.Errorf("load: %w", docstore.ErrStorageUnavailable), http.StatusServiceUnavailable},
		{"invalid call is bad request", fmt.Errorf("set: %w", errInvalidThing), http.StatusBadRequest},
		{"missing user is forbidden", user.ErrNoUser, http.StatusForbidden},
		{"anything else is internal", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			Failure(rr, tt.err, errInvalidThing)

			assert.Equal(t, tt.status, rr.Code)
			var result ActionResult
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&result))
			assert.False(t, result.Success)
			assert.Equal(t, tt.err.Error(), result.Message)
		})
	}
}
