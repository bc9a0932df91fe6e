package apikey

import (
	"github.com/orsta/orsta/internal/apikey/service"
	"go.uber.org/fx"
)

var Module = fx.Module("apikey.service",
	fx.Provide(service.NewService),
)
