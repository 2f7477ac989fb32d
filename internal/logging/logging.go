package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.elastic.co/ecszerolog"
)

const (
	FormatConsole = "console"
	FormatECS     = "ecs"
)

// Setup installs the global zerolog logger for app. Console output is meant
// for humans; ecs writes Elastic Common Schema JSON lines to stdout.
func Setup(app, level, format string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	logger, err := newLogger(os.Stdout, app, format)
	if err != nil {
		return err
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = logger
	return nil
}

func newLogger(w io.Writer, app, format string) (zerolog.Logger, error) {
	switch format {
	case FormatConsole, "":
		return zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Str("app", app).
			Timestamp().Logger(), nil
	case FormatECS:
		return ecszerolog.New(w).With().Str("app", app).Logger(), nil
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
}
