package app

import (
	"errors"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/internal/database"
	"github.com/klokku/studyplan/internal/docstore"
	log "github.com/sirupsen/logrus"
)

// Stores holds the document backends the planner runs on.
type Stores struct {
	// Documents routes demo sessions to the ephemeral backend, everything else to Postgres.
	Documents docstore.Store
	// Mirror is the local sqlite copy of the shown milestones.
	Mirror docstore.Store

	closers []io.Closer
}

// OpenStores connects Postgres, runs the migrations of both databases and
// picks Redis for demo sessions when an address is configured.
func OpenStores(cfg config.Application) (*Stores, error) {
	stores := &Stores{}

	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	pool, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	stores.closers = append(stores.closers, poolCloser{pool})
	durable := docstore.NewPostgresStore(pool)

	var ephemeral docstore.Store
	if cfg.Redis.Addr != "" {
		rdb, err := docstore.NewRedisClient(cfg.Redis.Addr)
		if err != nil {
			_ = stores.Close()
			return nil, err
		}
		stores.closers = append(stores.closers, rdb)
		ephemeral = docstore.NewRedisStore(rdb, cfg.Redis.TTL)
		log.Infof("Demo sessions stored in redis at %s", cfg.Redis.Addr)
	} else {
		ephemeral = docstore.NewMemoryStore()
		log.Info("Demo sessions stored in memory")
	}
	stores.Documents = docstore.NewSessionRouter(durable, ephemeral)

	mirrorDb, err := database.OpenSQLite(cfg.Mirror.Path)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	stores.closers = append(stores.closers, mirrorDb)
	stores.Mirror = docstore.NewSQLiteStore(mirrorDb)

	return stores, nil
}

// MemoryStores keeps everything in process memory, mirror included.
func MemoryStores() *Stores {
	return &Stores{
		Documents: docstore.NewSessionRouter(docstore.NewMemoryStore(), docstore.NewMemoryStore()),
		Mirror:    docstore.NewMemoryStore(),
	}
}

func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

type poolCloser struct {
	pool *pgxpool.Pool
}

func (p poolCloser) Close() error {
	p.pool.Close()
	return nil
}
