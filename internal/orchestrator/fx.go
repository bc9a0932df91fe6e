package orchestrator

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("orchestrator",
	fx.Provide(New),
	fx.Invoke(runHeartbeat),
	fx.Invoke(closeOnShutdown),
)

func runHeartbeat(lc fx.Lifecycle, o *Orchestrator) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				o.RunHeartbeat(ctx, HeartbeatInterval)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}

func closeOnShutdown(lc fx.Lifecycle, o *Orchestrator) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			if sqlDB, err := o.Primary().DB(); err == nil {
				_ = sqlDB.Close()
			}
			if o.Mirror() != nil {
				if sqlDB, err := o.Mirror().DB(); err == nil {
					_ = sqlDB.Close()
				}
			}
			return nil
		},
	})
}
