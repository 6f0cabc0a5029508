package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/rpggio/lapledger/internal/config"
	"github.com/rpggio/lapledger/internal/sqlite"
	"github.com/rpggio/lapledger/internal/tracker"
)

var errLocked = errors.New("database is in use by another lapledger process")

type commandContext struct {
	configFlag *string
	dbFlag     *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logger    *slog.Logger
	logCloser io.Closer

	db      *sqlite.DB
	lock    *flock.Flock
	tracker *tracker.Tracker
}

func newCommandContext(configFlag, dbFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		dbFlag:     dbFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
			cfg.DB.Path = strings.TrimSpace(*c.dbFlag)
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger. Long-running commands log at the
// configured level; one-shot commands stay quiet below warn unless verbose.
func (c *commandContext) ensureLogger(longRunning bool) (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	level := parseLogLevel(cfg.Log.Level)
	if !longRunning && !(c.verbose != nil && *c.verbose) && level < slog.LevelWarn {
		level = slog.LevelWarn
	}

	// stdout carries JSON-RPC in stdio mode and command output otherwise.
	logWriter := io.Writer(os.Stderr)
	if logPath := os.Getenv("LAPLEDGER_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			c.logCloser = file
			logWriter = fileWriter
		}
	}
	c.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))
	return c.logger, nil
}

// openTracker opens the database, takes the process lock and loads the ledger.
func (c *commandContext) openTracker(ctx context.Context, longRunning bool) (*tracker.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger(longRunning)
	if err != nil {
		return nil, err
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	if !isMemoryDB(cfg.DB.Path) {
		lock := flock.New(cfg.DB.Path + ".lock")
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return nil, errLocked
		}
		c.lock = lock
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		c.releaseLock()
		return nil, err
	}
	c.db = db
	if err := db.RunMigrations(); err != nil {
		_ = c.close()
		return nil, err
	}

	tr, err := tracker.New(ctx, sqlite.NewKVRepository(db), logger)
	if err != nil {
		_ = c.close()
		return nil, err
	}
	c.tracker = tr
	return tr, nil
}

// withTracker runs fn against a freshly opened tracker and releases the
// database and lock afterwards.
func (c *commandContext) withTracker(cmd *cobra.Command, fn func(context.Context, *tracker.Tracker) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() {
		err = errors.Join(err, c.close())
	}()
	tr, err := c.openTracker(ctx, false)
	if err != nil {
		return err
	}
	return fn(ctx, tr)
}

func (c *commandContext) close() error {
	var errs []error
	if c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	c.tracker = nil
	c.releaseLock()
	if c.logCloser != nil {
		errs = append(errs, c.logCloser.Close())
		c.logCloser = nil
	}
	c.logger = nil
	return errors.Join(errs...)
}

func (c *commandContext) releaseLock() {
	if c.lock == nil {
		return
	}
	_ = c.lock.Unlock()
	c.lock = nil
}

func isMemoryDB(path string) bool {
	return path == "" || path == ":memory:" || strings.Contains(path, "mode=memory")
}

func ensureDBDir(path string) error {
	if isMemoryDB(path) {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
