package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/studyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

const (
	userIdHeader      = "X-User-Id"
	demoSessionHeader = "X-Demo-Session"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {
	r.Use(requestLogger)

	// Propagate X-User-Id header into context for downstream services.
	// Authentication happens in front of this service.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			uid := req.Header.Get(userIdHeader)
			ctx := req.Context()
			if uid != "" {
				demo := false
				if v := req.Header.Get(demoSessionHeader); v != "" {
					parsed, err := strconv.ParseBool(v)
					if err != nil {
						http.Error(w, "invalid "+demoSessionHeader+" header", http.StatusBadRequest)
						return
					}
					demo = parsed
				}
				log.Debugf("user from header: %s (demo: %t)", uid, demo)
				ctx = user.WithUser(ctx, user.User{Uid: uid, Demo: demo})
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		log.WithFields(log.Fields{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request handled")
	})
}
