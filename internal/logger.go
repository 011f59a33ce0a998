package internal

import (
	"fmt"

	"github.com/lychee-technology/listmeta"
	"go.uber.org/zap"
)

// NewLogger builds the process logger from cfg. Binaries install it with
// zap.ReplaceGlobals; library code logs through zap.S().
func NewLogger(cfg listmeta.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Level == "debug" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		zcfg.Level = level
	}
	if cfg.Format != "" {
		zcfg.Encoding = cfg.Format
	}
	return zcfg.Build()
}
