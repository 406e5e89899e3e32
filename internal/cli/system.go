package cli

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitquest/internal/keyring"
	"github.com/julianstephens/habitquest/internal/storage"
	"github.com/julianstephens/habitquest/internal/storage/sqlstore"
	"github.com/julianstephens/habitquest/internal/tui"
)

type InitCmd struct {
	Force bool `help:"Back up and delete an existing data file before initializing."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.acquire(); err != nil {
		return err
	}

	if c.Force && ctx.IsFileBackend() {
		path := ctx.Config.DataPath()
		if _, err := os.Stat(path); err == nil {
			ctx.backupBeforeChange("init --force")
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to delete existing data file: %w", err)
			}
			ctx.printf("Deleted existing data file at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing data file: %w", err)
		}
	}

	store, err := ctx.Store()
	if err != nil {
		return err
	}
	if err := store.Init(); err != nil {
		return err
	}
	ctx.printf("Initialized habitquest storage at: %s\n", store.GetConfigPath())
	ctx.println("Next: habitquest signin <email>")
	return nil
}

type MigrateCmd struct {
	Status bool `help:"Only show the schema version and pending migrations."`
}

func (c *MigrateCmd) Run(ctx *Context) error {
	if err := ctx.acquire(); err != nil {
		return err
	}
	store, err := ctx.Store()
	if err != nil {
		return err
	}
	sqlStore, ok := store.(*sqlstore.Store)
	if !ok {
		return errors.New("migrate only applies to the sqlite and postgres backends")
	}
	sqlStore.Log = func(msg string) { ctx.println(msg) }

	if c.Status {
		pending, current, err := sqlStore.Pending()
		if err != nil {
			return err
		}
		ctx.printf("Schema version: %d\n", current)
		if len(pending) == 0 {
			ctx.println("No pending migrations.")
		}
		for _, m := range pending {
			ctx.printf("  pending %03d %s\n", m.Version, m.Name)
		}
		return nil
	}

	count, err := sqlStore.Migrate()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		ctx.println("No migrations to apply. Database is up to date.")
	} else {
		ctx.printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}

type TuiCmd struct{}

// Run opens the dashboard. It does not hold the process lock so that other
// commands can change the data while it is open; the dashboard reloads when
// the data file changes.
func (c *TuiCmd) Run(ctx *Context) error {
	tr, err := ctx.load()
	if err != nil {
		return err
	}
	if _, err := tr.CurrentUser(); err != nil {
		return err
	}

	ctx.backupBeforeChange("tui")

	opts := tui.Options{ToastDuration: ctx.Config.ToastDuration()}
	if ctx.IsFileBackend() {
		opts.WatchPath = ctx.Config.DataPath()
	}
	if js, ok := tr.Store().(*storage.JSONStore); ok {
		opts.Reload = js.Load
	}

	m := tui.NewModel(tr, opts)
	defer m.Close()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("dashboard exited with error: %w", err)
	}
	return nil
}

type KeyringSetCmd struct {
	ConnectionString string `arg:"" help:"PostgreSQL connection string to store in the OS keyring."`
}

func (c *KeyringSetCmd) Run(ctx *Context) error {
	if err := sqlstore.ValidateConnString(c.ConnectionString); err != nil {
		if !errors.Is(err, sqlstore.ErrEmbeddedCredentials) {
			return fmt.Errorf("invalid connection string: %w", err)
		}
		ctx.println("Warning: connection string contains a password. It will be stored in the encrypted OS keyring.")
	}

	if err := keyring.SetConnectionString(c.ConnectionString); err != nil {
		return err
	}
	ctx.println("✓ Connection string stored in OS keyring")
	ctx.println("  Set storage.backend to postgres and leave storage.dsn empty to use it")
	return nil
}

type KeyringDeleteCmd struct{}

func (c *KeyringDeleteCmd) Run(ctx *Context) error {
	if err := keyring.DeleteConnectionString(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no connection string found in keyring")
		}
		return err
	}
	ctx.println("✓ Connection string deleted from OS keyring")
	return nil
}
