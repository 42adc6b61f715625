package test_utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klokku/studyplan/internal/config"
	"github.com/klokku/studyplan/internal/database"
	log "github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

const snapshotName = "migrated"

// Postgres is a migrated throwaway database shared by the tests of a package.
type Postgres struct {
	Container *postgres.PostgresContainer
	Config    config.Database
}

// StartPostgres runs a postgres container, applies the migrations and
// snapshots the clean schema. Call it from TestMain.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	cfg := config.Database{
		User:   "test_studyplan",
		Pass:   "test_studyplan",
		Name:   "studyplan",
		Schema: "studyplan",
	}

	initScript, err := projectFile("dev", "init.sql")
	if err != nil {
		return nil, err
	}
	container, err := postgres.Run(
		ctx, "postgres:18.1-alpine",
		postgres.WithInitScripts(initScript),
		postgres.WithDatabase(cfg.Name),
		postgres.WithUsername(cfg.User),
		postgres.WithPassword(cfg.Pass),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}
	pg := &Postgres{Container: container, Config: cfg}

	if cfg.Host, err = container.Host(ctx); err != nil {
		pg.Terminate()
		return nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		pg.Terminate()
		return nil, err
	}
	cfg.Port = port.Int()
	pg.Config = cfg
	log.Infof("Postgres container started at %s:%d", cfg.Host, cfg.Port)

	if err := database.Migrate(cfg); err != nil {
		pg.Terminate()
		return nil, err
	}
	if err := container.Snapshot(ctx, postgres.WithSnapshotName(snapshotName)); err != nil {
		pg.Terminate()
		return nil, fmt.Errorf("failed to snapshot postgres container: %w", err)
	}
	return pg, nil
}

// Open returns a pool on the clean database. The schema is restored from the
// snapshot when the test ends.
func (p *Postgres) Open(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := database.Open(p.Config)
	if err != nil {
		t.Fatalf("Failed to open database connection: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		if err := p.Container.Restore(context.Background(), postgres.WithSnapshotName(snapshotName)); err != nil {
			t.Errorf("failed to restore postgres snapshot: %v", err)
		}
	})
	return pool
}

func (p *Postgres) Terminate() {
	if err := testcontainers.TerminateContainer(p.Container); err != nil {
		log.Errorf("failed to terminate postgres container: %v", err)
	}
}

// projectFile resolves a path relative to the directory holding go.mod.
func projectFile(parts ...string) (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(append([]string{dir}, parts...)...), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above the working directory")
		}
		dir = parent
	}
}
