package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ib-77/memosum/internal/config"
	"github.com/ib-77/memosum/internal/database"
	"github.com/ib-77/memosum/internal/database/repository"
	"github.com/ib-77/memosum/internal/logging"
	"github.com/ib-77/memosum/internal/memo"
	"github.com/ib-77/memosum/pkg/memocalc"
)

// app carries what every subcommand shares. The database and notebook are opened lazily
// so that sum and explain never touch the disk.
type app struct {
	verbose    bool
	configPath string

	cfg    config.Config
	logger *zap.Logger
	engine *memocalc.Engine

	db *sql.DB
	nb *memo.Notebook
}

func (a *app) cfgFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.Path()
}

func (a *app) init(interactive bool) error {
	cfg, err := config.LoadFile(a.cfgFile())
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(a.logOptions(interactive))
	if err != nil {
		return err
	}
	a.logger = logger
	a.engine = memocalc.New(memocalc.WithLogger(logger.Named("engine")))
	return nil
}

// notebook opens the database, applies migrations and loads the stored tabs. CLI commands
// pass immediate so that edits are extracted before the process exits.
func (a *app) notebook(ctx context.Context, immediate bool) (*memo.Notebook, error) {
	if a.nb != nil {
		return a.nb, nil
	}

	db, err := database.Open(a.cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	nb := memo.New(repository.NewNotebookStore(db), memo.Options{
		MaxTabs:      a.cfg.Memo.MaxTabs,
		DefaultTitle: a.cfg.Memo.DefaultTitle,
		Debounce:     time.Duration(a.cfg.Memo.DebounceMS) * time.Millisecond,
		Immediate:    immediate || a.cfg.Memo.DebounceMS == 0,
		Theme:        a.cfg.UI.Theme,
		Lines:        a.cfg.Batch.Lines,
		Engine:       a.engine,
		Logger:       a.logger.Named("memo"),
	})
	if err := nb.Load(ctx); err != nil {
		nb.Close()
		_ = db.Close()
		return nil, err
	}

	a.db, a.nb = db, nb
	return nb, nil
}

func (a *app) close() {
	if a.nb != nil {
		a.nb.Close()
		a.nb = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("closing database", zap.Error(err))
		}
		a.db = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
