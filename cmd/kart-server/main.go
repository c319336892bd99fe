// Command kart-server hosts a single cart session over HTTP.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	kart "github.com/xenking/kart-pricing/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := kart.LoadConfig()
		if err != nil {
			return err
		}
		return kart.Run(ctx, lg, m, cfg)
	})
}
