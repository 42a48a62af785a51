// Package logger wires the standard library log output to a size-rotated
// file, optionally mirrored to the console.
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls log file rotation.
type Config struct {
	LogDir     string
	LogFile    string
	MaxSize    int // max size of a single log file (MB)
	MaxBackups int // max number of rotated files to keep
	MaxAge     int // max days to keep rotated files
	Compress   bool
	Console    bool // also write to stdout
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() *Config {
	return &Config{
		LogDir:     "logs",
		LogFile:    "app.log",
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     30,
		Compress:   true,
		Console:    true,
	}
}

// Setup routes the standard library logger through a rotating file writer.
// Must run before other subsystems start logging.
func Setup(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(cfg.LogDir, 0755); err != nil {
		return err
	}

	logFile := filepath.Join(cfg.LogDir, cfg.LogFile)
	rotating := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	var writer io.Writer = rotating
	if cfg.Console {
		writer = io.MultiWriter(os.Stdout, rotating)
	}

	log.SetOutput(writer)
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	log.Printf("📝 Log system initialized")
	log.Printf("📂 Log file: %s", logFile)
	log.Printf("📊 Rotation: %dMB per file, %d backups, %d days retained", cfg.MaxSize, cfg.MaxBackups, cfg.MaxAge)

	return nil
}
