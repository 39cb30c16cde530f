// Package logger provides the process-wide logging facade used by all
// batchline components. It wraps zerolog so callers keep the simple
// Infof/Warnf/Errorf surface while output stays structured.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	log     zerolog.Logger
	logFile *os.File
)

func init() {
	log = newConsoleLogger(os.Stdout, zerolog.InfoLevel)
}

func newConsoleLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(console).Level(level).With().Timestamp().Logger()
}

// Init directs log output to stdout and, when filename is non-empty, to the
// given file as well. Call Close when the process exits.
func Init(filename string, debug bool) error {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if filename == "" {
		log = newConsoleLogger(os.Stdout, level)
		return nil
	}

	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}
	logFile = f

	console := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log = zerolog.New(io.MultiWriter(console, f)).Level(level).With().Timestamp().Logger()
	return nil
}

// Close releases the log file opened by Init, if any.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}
