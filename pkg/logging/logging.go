package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConsoleLogger writes text logs to stderr.
func ConsoleLogger(level logrus.Level) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return logger
}

// FileLogger writes text logs to stderr and JSON logs to a rotated file at
// logPath. The returned closer must be closed on shutdown.
func FileLogger(level logrus.Level, logPath string) (io.Closer, *logrus.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     28, // days
		Compress:   true,
	}

	logger := ConsoleLogger(level)
	logger.AddHook(&writerHook{
		writer:    rotator,
		formatter: &logrus.JSONFormatter{},
		levels:    levelsFrom(level),
	})
	return rotator, logger, nil
}

type writerHook struct {
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}

func levelsFrom(min logrus.Level) []logrus.Level {
	out := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= min {
			out = append(out, l)
		}
	}
	return out
}
