package instance

import (
	"github.com/orsta/orsta/internal/instance/service"
	"go.uber.org/fx"
)

var Module = fx.Module("instance.service",
	fx.Provide(service.NewService),
)
