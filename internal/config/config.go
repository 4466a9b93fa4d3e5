package config

import (
	"os"

	"go.uber.org/zap/zapcore"
)

var logLevelEnv = "LOG_LEVEL" // log level env key (default: "WARN")

func LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(os.Getenv(logLevelEnv))
	if err == nil {
		return lvl
	}
	return zapcore.WarnLevel // default
}
