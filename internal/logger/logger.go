package logger

import "github.com/rs/zerolog/log"

// Logger forwards retryablehttp's log output to the global logger at debug level.
type Logger struct{}

func (*Logger) Printf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}
