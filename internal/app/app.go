package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/pkg/milestone"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, storage, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	stores *Stores
	deps   *Dependencies
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(cfg config.Application) (*Application, error) {
	catalog, err := milestone.LoadCatalog(cfg.Milestones.Catalog)
	if err != nil {
		return nil, err
	}

	stores, err := OpenStores(cfg)
	if err != nil {
		return nil, err
	}

	app := newApplication(cfg, stores, catalog)
	log.Infof("Loaded %d milestones", len(catalog))
	return app, nil
}

func newApplication(cfg config.Application, stores *Stores, catalog milestone.Catalog) *Application {
	r := mux.NewRouter()

	deps := BuildDependencies(stores, catalog, cfg)
	SetupMiddleware(r)
	RegisterRoutes(r, deps)

	srv := &http.Server{
		Handler:      r,
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, stores: stores, deps: deps, router: r, srv: srv}
}

// Run starts the HTTP server and blocks until ctx is done, then shuts down.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errCh <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = a.close()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.srv.Shutdown(shutdownCtx)
	if serveErr := <-errCh; !errors.Is(serveErr, http.ErrServerClosed) {
		err = errors.Join(err, serveErr)
	}
	return errors.Join(err, a.close())
}

func (a *Application) close() error {
	a.deps.ShownStore.Wait()
	return a.stores.Close()
}
