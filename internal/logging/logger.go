package logging

import (
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"

	"pdfchat/internal/config"
)

// New builds an arbor logger. When cfg.File is set, output goes to that file
// only; the terminal UI owns stdout and must not be written to. Otherwise logs
// go to the console.
func New(cfg config.LoggingConfig) arbor.ILogger {
	logger := arbor.NewLogger()

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:             models.LogWriterTypeFile,
				FileName:         cfg.File,
				TimeFormat:       "15:04:05",
				MaxSize:          10 * 1024 * 1024,
				MaxBackups:       3,
				TextOutput:       true,
				DisableTimestamp: false,
			})
			return logger.WithLevelFromString(level(cfg.Level))
		}
	}

	logger = logger.WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})
	return logger.WithLevelFromString(level(cfg.Level))
}

// Discard returns a logger without writers, for tests and library defaults.
func Discard() arbor.ILogger {
	return arbor.NewLogger()
}

func level(l string) string {
	if l == "" {
		return "info"
	}
	return l
}
