package sink

import (
	"log/slog"

	"github.com/Versifine/pietype/internal/keys"
)

// Log is a dry-run sink that only logs what it is asked to do.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger.With("sink", "log")}
}

func (l *Log) Press(key keys.Key) error {
	l.logger.Debug("Key press", "key", key.String())
	return nil
}

func (l *Log) Release(key keys.Key) error {
	l.logger.Debug("Key release", "key", key.String())
	return nil
}

func (l *Log) Click(key keys.Key) error {
	l.logger.Info("Key click", "key", key.String())
	return nil
}

func (l *Log) Close() error { return nil }
