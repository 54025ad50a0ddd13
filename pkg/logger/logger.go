package logger

import (
	"log/slog"
	"os"
)

// Log is the process-wide application logger. It falls back to slog's
// default handler until Init is called.
var Log = slog.Default()

func Init() {
	InitWithLevel(slog.LevelDebug)
}

// InitWithLevel installs the JSON handler at the given level
func InitWithLevel(level slog.Level) {
	// JSON handler for production-ready logging
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler)
	slog.SetDefault(Log)
}
