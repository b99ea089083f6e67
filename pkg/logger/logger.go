package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger.
var Log = logrus.New()

// InitLogger configures Log for JSON output on stdout at the given level.
// An empty or unknown level falls back to info.
func InitLogger(level string) {
	Log.Out = os.Stdout
	Log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)
}
