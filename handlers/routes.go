package handlers

import (
	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/middleware/auth"
	"github.com/spatium-offices/vms/middleware/ratelimit"
	"github.com/spatium-offices/vms/server"
	"github.com/spatium-offices/vms/services/token"
	"github.com/spatium-offices/vms/services/user"
)

// RegisterRoutes wires the HTTP surface. The authentication gate runs on
// every request; protected groups additionally require a resolved identity.
func RegisterRoutes(
	srv *server.Server,
	cfg *config.Config,
	tokenSvc *token.Service,
	userSvc *user.Service,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	visitorHandler *VisitorHandler,
	directoryHandler *DirectoryHandler,
) {
	e := srv.Echo()
	e.Use(auth.Gate(tokenSvc))

	api := e.Group("/api/v1")

	authGroup := api.Group("/auth")
	if cfg.RateLimit.Enabled {
		authGroup.Use(ratelimit.Middleware(&ratelimit.Config{
			Rate:   cfg.RateLimit.Rate,
			Period: cfg.RateLimit.Period,
		}))
	}
	authGroup.POST("/verify-email/", authHandler.RequestOTP)
	authGroup.POST("/verify-email-otp/", authHandler.VerifyOTP)
	authGroup.POST("/token/refresh/", authHandler.Refresh)
	authGroup.POST("/logout/", authHandler.Logout, auth.RequireAuth())

	usersGroup := api.Group("/users")
	usersGroup.POST("/", userHandler.Register)
	usersGroup.GET("/me/", userHandler.Me, auth.RequireAuth())
	usersGroup.DELETE("/:id/", userHandler.Archive, auth.RequireAuth())

	vms := api.Group("/vms", auth.RequireAuth())
	vms.POST("/visitors/", visitorHandler.Create)
	vms.GET("/visitors/", visitorHandler.List)
	vms.POST("/qrcode/", visitorHandler.QRCode)
	vms.POST("/identity-card-email/", visitorHandler.EmailIdentityCard)

	// The identity-card image itself is the QR target and must be fetchable
	// without a token.
	api.GET("/vms/identity-card/", visitorHandler.IdentityCard)

	admin := api.Group("/admin", auth.RequireAuth(), auth.RequireRole(userSvc, user.RoleAdmin))
	admin.POST("/companies/", directoryHandler.CreateCompany)
	admin.GET("/companies/", directoryHandler.ListCompanies)
	admin.DELETE("/companies/:id/", directoryHandler.ArchiveCompany)
	admin.POST("/facilities/", directoryHandler.CreateFacility)
	admin.GET("/facilities/", directoryHandler.ListFacilities)
	admin.POST("/purposes/", directoryHandler.CreatePurpose)
	admin.GET("/purposes/", directoryHandler.ListPurposes)
}
