package config

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const LogLevelEnv = "FORGE_LOG_LEVEL"
const LogFormatEnv = "FORGE_LOG_FORMAT"

// ConfigureLogger sets the logrus level and formatter. An explicit level wins
// over FORGE_LOG_LEVEL; unknown levels fall back to info.
func ConfigureLogger(levelMaybe ...string) {
	time.Local = time.FixedZone("UTC", 0)

	level := os.Getenv(LogLevelEnv)
	if len(levelMaybe) > 0 && levelMaybe[0] != "" {
		level = levelMaybe[0]
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	format := os.Getenv(LogFormatEnv)
	if format == "" {
		format = "color-text"
	}
	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
		})
	case "color-text":
		logrus.SetFormatter(&logrus.TextFormatter{
			DisableColors: false,
			ForceColors:   true,
		})
	default:
		logrus.WithFields(logrus.Fields{
			"format":  format,
			"options": []string{"json", "text", "color-text"},
		}).Warn("unknown format")
	}
}

// VerbosityLevel maps a repeated -v count to a level name.
func VerbosityLevel(count int) string {
	switch {
	case count <= 0:
		return ""
	case count == 1:
		return "info"
	case count == 2:
		return "debug"
	default:
		return "trace"
	}
}
