package commands

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger returns a no-op logger unless verbose is set. With a logPath the
// output goes to that file as JSON; otherwise it goes to stderr in console form.
// Prompts, replies and credentials are never logged.
func newLogger(verbose bool, logPath string) (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}

	var cfg zap.Config
	if logPath != "" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.OutputPaths = []string{logPath}
		cfg.ErrorOutputPaths = []string{logPath}
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		cfg.DisableStacktrace = true
	}

	return cfg.Build()
}
