// Command formulacli is a small demo REPL around the formula package: the
// one legitimate I/O surface in this repository, kept deliberately outside
// the pure, dependency-light core. It wires the ambient observability and
// CLI stack (cobra, zerolog, uuid) the core package itself never imports.
package main

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/oakmoss/formulacore/cmd/formulacli/internal/repl"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	if err := repl.NewRootCommand(logger).Execute(); err != nil {
		logger.Error().Err(err).Msg("formulacli: command failed")
		os.Exit(1)
	}
}
