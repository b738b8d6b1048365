package config

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

func NewLogger() *slog.Logger {
	if Development() {
		return slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, nil))
}

// SetupLogrus configures the package loggers of the engine. With LOG_FILE
// set, entries are also written as JSON to a rotating file.
func SetupLogrus(loggers ...*logrus.Logger) error {
	level := logrus.InfoLevel
	if Development() {
		level = logrus.DebugLevel
	}

	var hook logrus.Hook
	if path, ok := os.LookupEnv("LOG_FILE"); ok {
		var err error
		hook, err = rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   path,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			return err
		}
	}

	for _, log := range loggers {
		log.SetLevel(level)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: Development()})
		if hook != nil {
			log.AddHook(hook)
		}
	}
	return nil
}
