package logger

import (
	"github.com/sirupsen/logrus"
)

// Logger is the process-wide logger.  It is usable before Init with
// logrus defaults.
var Logger = logrus.New()

// Init configures Logger with a text formatter and the given level name.
// Unknown level names fall back to info.
func Init(level string) {
	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)
}

// WithComponent returns an entry tagged with the component name.
func WithComponent(name string) *logrus.Entry {
	return Logger.WithField("component", name)
}
