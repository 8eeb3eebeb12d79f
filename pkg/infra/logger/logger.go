package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logsDir        = "logs"
	fileBufferSize = 32 * 1024
)

type Options struct {
	// Level is a logrus level name; empty falls back to LOG_LEVEL then info.
	Level string
	// File is the log file name inside the logs directory. Empty disables
	// file output.
	File string
	// Console mirrors every entry to stdout.
	Console bool
}

// NewLogger builds the JSON logger. The returned closer flushes the file
// writer and must be called on shutdown.
func NewLogger(opts Options) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	logger.SetLevel(parseLevel(opts.Level))

	if opts.File == "" {
		logger.SetOutput(os.Stdout)
		return logger, io.NopCloser(nil), nil
	}

	logFile := filepath.Join(logsDir, filepath.Clean(opts.File))
	if !strings.HasPrefix(logFile, logsDir+string(filepath.Separator)) {
		return nil, nil, fmt.Errorf("invalid log file path %q: must be in %s directory", opts.File, logsDir)
	}
	if err := os.MkdirAll(logsDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	asyncWriter, err := NewAsyncFileWriter(logFile, fileBufferSize)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(asyncWriter)
	if opts.Console {
		logger.AddHook(NewConsoleHook(os.Stdout))
	}
	return logger, asyncWriter, nil
}

func parseLevel(level string) logrus.Level {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
