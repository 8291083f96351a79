package logger

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Rogue-Bear-Innovations/websites/internal/config"
)

// NewLogger builds a console logger in development and a JSON logger in
// production, both at the configured level.
func NewLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	var zcfg zap.Config
	if cfg.Debug() {
		zcfg = zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	zcfg.Level = level

	l, err := zcfg.Build(zap.AddStacktrace(zapcore.FatalLevel))
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return l.Sugar(), nil
}

func Desugar(l *zap.SugaredLogger) *zap.Logger {
	return l.Desugar()
}
