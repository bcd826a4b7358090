package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/clippings/internal/config"
)

// New builds a logger writing to w with the configured level and format.
func New(cfg config.Log, w io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(level)

	switch cfg.Format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return log, nil
}
