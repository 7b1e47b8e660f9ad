// Package logging builds the zap logger every command and driver stage
// writes through, grounded on aws-karpenter-provider-aws's karpenter/main.go
// (log.Setup(...) with a verbose-mode switch, zap.S() sugared calls at
// panic sites). The scheduler has no controller-runtime to hand the logger
// to, so Setup returns the *zap.Logger directly instead of installing it
// into a shared global.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Setup builds a production-shaped JSON logger, or a human-readable
// development logger when verbose is set, mirroring karpenter/main.go's
// EnableVerboseLogging switch between development and production zap
// defaults.
func Setup(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg = zap.NewProductionConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build logger: %w", err)
	}
	return logger, nil
}

// ForIteration returns a child logger annotated with the current group,
// instance and iteration identifiers, so every log line the driver emits
// during a solve is traceable back to the run that produced it.
func ForIteration(logger *zap.Logger, group, instance string, iteration int) *zap.Logger {
	return logger.With(
		zap.String("group", group),
		zap.String("instance", instance),
		zap.Int("iteration", iteration),
	)
}
