package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/chenBenjamin97/football-analyzer/pkg/config"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

//New builds the application logger: text output on stderr, copied to a rotating file when cfg.File is set
func New(cfg config.LogConfig) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level '%s': %w", cfg.Level, err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stderr
	if cfg.File != "" {
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    50, //megabytes
			MaxBackups: 3,
			MaxAge:     28, //days
		})
	}
	logger.SetOutput(out)

	return logger, nil
}
