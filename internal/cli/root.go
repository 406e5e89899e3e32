package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitquest/internal/backup"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/storage/sqlstore"
	"github.com/julianstephens/habitquest/internal/tracker"
	"github.com/julianstephens/habitquest/internal/utils"
)

var ErrNoFileBackend = errors.New("backups are only available for the json and sqlite backends")

// Context is shared by every command. The store is opened on first use so
// commands such as keyring never touch the database.
type Context struct {
	Config *config.Config
	Out    io.Writer
	In     io.Reader
	Clock  utils.Clock

	store   storage.Provider
	tracker *tracker.Tracker
	lock    *storage.Lock
}

func NewContext(cfg *config.Config) *Context {
	return &Context{
		Config: cfg,
		Out:    os.Stdout,
		In:     os.Stdin,
		Clock:  utils.RealClock{Location: cfg.Location()},
	}
}

// IsFileBackend reports whether the data lives in a local file.
func (c *Context) IsFileBackend() bool {
	return c.Config.Storage.Backend != constants.BackendPostgres
}

// Store returns the record store for the configured backend without loading it.
func (c *Context) Store() (storage.Provider, error) {
	if c.store != nil {
		return c.store, nil
	}

	switch c.Config.Storage.Backend {
	case constants.BackendJSON:
		c.store = storage.NewJSONStore(c.Config.DataPath())
	case constants.BackendSQLite:
		c.store = sqlstore.NewSQLite(c.Config.DataPath())
	case constants.BackendPostgres:
		if c.Config.Storage.DSN != "" {
			if err := sqlstore.ValidateConnString(c.Config.Storage.DSN); err != nil {
				return nil, err
			}
		}
		// keyring entries may carry a password; they are not revalidated
		dsn, err := keyring.ResolveDSN(c.Config.Storage.DSN)
		if err != nil {
			return nil, err
		}
		c.store = sqlstore.NewPostgres(dsn)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", config.ErrInvalidConfig, c.Config.Storage.Backend)
	}
	return c.store, nil
}

// acquire takes the process lock for file backed stores.
func (c *Context) acquire() error {
	if c.lock != nil || !c.IsFileBackend() {
		return nil
	}
	lock, err := storage.AcquireLock(filepath.Join(c.Config.Dir, constants.LockFileName))
	if err != nil {
		return err
	}
	c.lock = lock
	return nil
}

// Tracker locks and loads the store and returns the service on top of it.
func (c *Context) Tracker() (*tracker.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	if err := c.acquire(); err != nil {
		return nil, err
	}
	return c.load()
}

func (c *Context) load() (*tracker.Tracker, error) {
	store, err := c.Store()
	if err != nil {
		return nil, err
	}
	if err := store.Load(); err != nil {
		return nil, err
	}
	c.tracker = tracker.New(store, c.Clock)
	return c.tracker, nil
}

// BackupManager returns a manager for the data file.
func (c *Context) BackupManager() (*backup.Manager, error) {
	if !c.IsFileBackend() {
		return nil, ErrNoFileBackend
	}
	return backup.NewManager(c.Config.DataPath(), c.Config.Backup.MaxBackups), nil
}

// backupBeforeChange snapshots the data file ahead of a destructive command.
func (c *Context) backupBeforeChange(reason string) {
	if !c.IsFileBackend() {
		return
	}
	mgr, err := c.BackupManager()
	if err != nil {
		return
	}
	path, err := mgr.Create()
	if err != nil {
		logger.Warn("Automatic backup failed", "reason", reason, "error", err)
		return
	}
	logger.Info("Created automatic backup", "reason", reason, "path", path)
}

// closeStore closes the store but keeps the lock.
func (c *Context) closeStore() error {
	c.tracker = nil
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// Close releases the store and the lock.
func (c *Context) Close() error {
	return errors.Join(c.closeStore(), c.lock.Release())
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}
