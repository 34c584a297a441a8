// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
)

// Logger is the global structured logger used by the service. It starts with
// a sane default so library code can log before main configures it.
var Logger = newJSONLogger()

// InitLogger initializes the global Logger with JSON handler at info level.
//
// InitLogger is exported to allow other packages to initialize the Logger.
func InitLogger() {
	Logger = newJSONLogger()
}

func newJSONLogger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h)
}
