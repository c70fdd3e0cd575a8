// Package logging configures the global zerolog logger shared by the
// example binaries. internal/lob never imports this package — it logs
// through the same global logger directly, exactly as the teacher's
// internal/server.go and internal/worker.go do.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init points the global zerolog logger at a human-readable console writer
// and applies the requested level, defaulting to info on an unrecognized
// string.
func Init(level string) {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen}).
		With().
		Timestamp().
		Logger()
}
