// Package logger holds the process-wide structured logger. The package-level
// functions do nothing until Init has run, so library code can log freely in tests.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/habitquest/internal/constants"
)

const (
	logDirName = "logs"
	rotateMB   = 10
	keepFiles  = 3
	keepDays   = 28
)

var Logger *log.Logger

type Config struct {
	Debug     bool
	ConfigDir string
	// Quiet keeps stderr clean in debug mode while the dashboard owns the terminal.
	Quiet bool
}

// Path is the active log file under configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, logDirName, constants.AppName+".log")
}

func Init(cfg Config) error {
	path := Path(cfg.ConfigDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotateMB,
		MaxBackups: keepFiles,
		MaxAge:     keepDays,
		Compress:   true,
	}

	opts := log.Options{
		ReportTimestamp: true,
		Prefix:          constants.AppName,
		Level:           log.InfoLevel,
	}
	var out io.Writer = rotating
	if cfg.Debug {
		opts.Level = log.DebugLevel
		opts.ReportCaller = true
		if !cfg.Quiet {
			out = io.MultiWriter(os.Stderr, rotating)
		}
	}

	Logger = log.NewWithOptions(out, opts)
	return nil
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
