package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/config"
	"github.com/Rogue-Bear-Innovations/websites/internal/db"
	"github.com/Rogue-Bear-Innovations/websites/internal/logger"
	"github.com/Rogue-Bear-Innovations/websites/internal/proto"
	"github.com/Rogue-Bear-Innovations/websites/internal/service"
	"github.com/Rogue-Bear-Innovations/websites/internal/transport"
)

func main() {
	fx.New(options()).Run()
}

func options() fx.Option {
	return fx.Options(
		fx.Provide(
			config.NewConfig,
			logger.NewLogger,
			logger.Desugar,
			db.NewAdapterFromConfig,
			service.NewWebsitesFromConfig,
		),
		transport.Module,
		proto.Module,
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l}
		}),
		fx.Invoke(func(*transport.HTTPServer, *proto.WebsitesServerImpl) {}),
	)
}
