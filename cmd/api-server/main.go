package main

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	catalog "github.com/xenking/product-catalog/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := catalog.LoadConfig()
		if err != nil {
			return errors.Wrap(err, "config")
		}
		lg.Info("Config loaded",
			zap.String("addr", cfg.Addr),
			zap.Int32("db_max_conns", cfg.Database.MaxConns),
			zap.Strings("cors_origins", cfg.CORS.Origins),
		)
		return catalog.Run(ctx, lg, m, cfg)
	})
}
