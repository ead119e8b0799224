// Package logging builds the service logger for a deployment environment.
package logging

import (
	"io"
	"log/slog"
)

// Constants for different environment types.
const (
	EnvLocal = "local"
	EnvDev   = "development"
	EnvProd  = "production"
)

// Setup initializes and returns a logger based on the environment provided.
//   - local: text, debug, with source
//   - development: json, info
//   - production: json, warn, without time
//   - anything else: json, error, without time
func Setup(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case EnvLocal:
		log = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
			Level:     slog.LevelDebug,
			AddSource: true,
		}))
	case EnvDev:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	case EnvProd:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       slog.LevelWarn,
			ReplaceAttr: dropTime,
		}))
	default:
		log = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       slog.LevelError,
			ReplaceAttr: dropTime,
		}))

		log.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}

func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}
	return a
}
