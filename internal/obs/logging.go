// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
)

// Logger is the global structured logger used by the service. It starts as
// the slog default so packages can log before InitLogger runs (tests, init
// paths) and is switched to the service handler in main.
var Logger = slog.Default()

// InitLogger points the global Logger at a JSON handler writing to stdout at
// info level.
func InitLogger() {
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
}
