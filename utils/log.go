package utils

import (
	"fmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"os"
	"path/filepath"
)

var logger = zap.NewNop().Sugar()

// SetupLogger sends structured logs to logFilePath. In debug mode they are mirrored to stderr.
func SetupLogger(logFilePath string, debug bool) error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = nil
	cfg.ErrorOutputPaths = []string{"stderr"}

	if logFilePath != "" {
		absoluteLogFilePath, err := filepath.Abs(logFilePath)

		if err != nil {
			return err
		}

		cfg.OutputPaths = append(cfg.OutputPaths, absoluteLogFilePath)
	}

	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.OutputPaths = append(cfg.OutputPaths, "stderr")
	}

	if len(cfg.OutputPaths) == 0 {
		logger = zap.NewNop().Sugar()
		return nil
	}

	zapLogger, err := cfg.Build()

	if err != nil {
		return err
	}

	logger = zapLogger.Sugar()
	return nil
}

func Logger() *zap.SugaredLogger {
	return logger
}

func SyncLogger() {
	_ = logger.Sync()
}

func ConsoleAndLogPrintf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(os.Stdout, message)
	logger.Info(message)
}
