package common

import (
	"os"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// InitLog configures the global logger. Unknown levels fall back to info.
func InitLog(level string) {
	log.SetOutput(os.Stdout)
	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithField("prefix", "init").Warnf("unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Logger returns an entry tagged with a component prefix.
func Logger(prefix string) *log.Entry {
	return log.WithField("prefix", prefix)
}
