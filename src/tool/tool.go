package tool

import (
	"errors"
	"os"

	"github.com/pngtap/pngtap/src/logging"
	"github.com/pngtap/pngtap/src/png"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes, one per failure class. Scripts depend on these staying
// distinguishable.
const (
	ExitOK            = 0
	ExitUsage         = 1
	ExitIO            = 2
	ExitFormat        = 3
	ExitDecompression = 4
	ExitIntegrity     = 5
)

var verbose bool

var Command = &cobra.Command{
	Use:   "pngtap",
	Short: "Inspect PNG internals and compute CRC32 checksums",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logging.SetLevel(zerolog.DebugLevel)
		}
	},
}

func init() {
	Command.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

func Execute() {
	if err := Command.Execute(); err != nil {
		os.Exit(ExitUsage)
	}
}

// ExitCode maps an error from the decode pipeline to its exit code.
// Unrecognized errors are treated as I/O failures.
func ExitCode(err error) int {
	var formatErr *png.FormatError
	var unsupportedErr *png.UnsupportedError
	var decompErr *png.DecompressionError
	var integrityErr *png.IntegrityError
	switch {
	case errors.As(err, &formatErr), errors.As(err, &unsupportedErr):
		return ExitFormat
	case errors.As(err, &decompErr):
		return ExitDecompression
	case errors.As(err, &integrityErr):
		return ExitIntegrity
	}
	return ExitIO
}

// Fail logs a fatal error and exits with its mapped code.
func Fail(err error) {
	logging.Error().Err(err).Msg("aborting")
	os.Exit(ExitCode(err))
}
