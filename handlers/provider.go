package handlers

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewAuthHandler),
	fx.Provide(NewUserHandler),
	fx.Provide(NewVisitorHandler),
	fx.Provide(NewDirectoryHandler),
	fx.Invoke(RegisterRoutes),
)
