// Package logger configures the global zerolog logger from command line options.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is a go-flags option group for log setup.
type Logger struct {
	Writer io.Writer `no-flag:"true"` // defaults to stderr

	Level   string `long:"log-level"    env:"LOG_LEVEL"    description:"Log level"                   default:"info" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error"`
	Format  string `long:"log-format"   env:"LOG_FORMAT"   description:"Log output format"           default:"text" choice:"text" choice:"json"`
	NoColor bool   `long:"log-no-color" env:"LOG_NO_COLOR" description:"Disable colors in text output"`
}

// Setup applies the options to the global logger.
func (l *Logger) Setup() {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil || l.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	w := l.Writer
	if w == nil {
		w = os.Stderr
	}

	if l.Format == "json" {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    l.NoColor,
			TimeFormat: time.DateTime,
		}).With().Timestamp().Logger()
	}

	if err != nil {
		log.Warn().Str("level", l.Level).Msg("Unknown log level, using info")
	}
}
