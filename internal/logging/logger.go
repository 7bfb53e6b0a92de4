package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/game-marketplace/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup installs a JSON logger on stdout as the process default. It runs
// before configuration is loaded.
func Setup() {
	slog.SetDefault(slog.New(NewJSONHandler(os.Stdout)))
}

func NewJSONHandler(w io.Writer) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}

// Output returns stdout, teed into a size-rotated file when cfg.LogFile is
// set. The returned closer releases the file.
func Output(cfg *config.Config) (io.Writer, io.Closer) {
	if cfg.LogFile == "" {
		return os.Stdout, nopCloser{}
	}
	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, file), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
