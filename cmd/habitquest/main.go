package main

import (
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitquest/internal/cli"
	"github.com/julianstephens/habitquest/internal/config"
	"github.com/julianstephens/habitquest/internal/constants"
	apperrors "github.com/julianstephens/habitquest/internal/errors"
	"github.com/julianstephens/habitquest/internal/logger"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding config.yaml, logs and the default data file." type:"path" env:"HABITQUEST_CONFIG_DIR"`
	Debug     bool   `help:"Enable debug logging."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize habitquest storage."`
	Migrate  cli.MigrateCmd  `cmd:"" help:"Run database migrations."`
	Tui      cli.TuiCmd      `cmd:"" default:"1" help:"Launch the interactive dashboard."`
	Signin   cli.SigninCmd   `cmd:"" help:"Sign in, creating the user on first use."`
	Signout  cli.SignoutCmd  `cmd:"" help:"Sign out."`
	Whoami   cli.WhoamiCmd   `cmd:"" help:"Show the signed-in user."`
	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits."`
	Check    cli.CheckCmd    `cmd:"" help:"Toggle a habit's completion for a day."`
	Progress cli.ProgressCmd `cmd:"" help:"Show level, world and XP."`

	Achievements cli.AchievementsCmd `cmd:"" help:"Show and evaluate achievements."`
	Templates    cli.TemplatesCmd    `cmd:"" help:"Browse and add habit templates."`

	Export   cli.ExportCmd   `cmd:"" help:"Export your data as JSON."`
	Import   cli.ImportCmd   `cmd:"" help:"Import data from a JSON export."`
	Backup   cli.BackupCmd   `cmd:"" help:"Manage data file backups."`
	Validate cli.ValidateCmd `cmd:"" help:"Check stored data for integrity problems."`
	Keyring  struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store the PostgreSQL connection string in the OS keyring."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Gamified habit tracker: earn XP, level up and unlock achievements."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	dir := CLI.ConfigDir
	if dir == "" {
		d, err := config.DefaultDir()
		if err != nil {
			apperrors.Fatal(err)
		}
		dir = d
	}

	cfg, err := config.Load(dir)
	if err != nil {
		apperrors.Fatal(err)
	}
	if CLI.Debug {
		cfg.App.Debug = true
	}

	if err := logger.Init(logger.Config{
		Debug:     cfg.App.Debug,
		ConfigDir: cfg.Dir,
		Quiet:     strings.HasPrefix(kctx.Command(), "tui"),
	}); err != nil {
		apperrors.Fatal(err)
	}
	logger.Debug("Starting", "command", kctx.Command(), "backend", cfg.Storage.Backend)

	appCtx := cli.NewContext(cfg)
	err = kctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close data store", "error", closeErr)
	}
	if apperrors.Report(os.Stderr, err) {
		os.Exit(1)
	}
}
