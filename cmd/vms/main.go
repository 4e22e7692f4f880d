package main

import (
	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/database"
	"github.com/spatium-offices/vms/handlers"
	"github.com/spatium-offices/vms/server"
	"github.com/spatium-offices/vms/services/directory"
	"github.com/spatium-offices/vms/services/idcard"
	"github.com/spatium-offices/vms/services/ledger"
	"github.com/spatium-offices/vms/services/logging"
	"github.com/spatium-offices/vms/services/mail"
	"github.com/spatium-offices/vms/services/otp"
	"github.com/spatium-offices/vms/services/token"
	"github.com/spatium-offices/vms/services/user"
	"github.com/spatium-offices/vms/services/visitor"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.NewProvider(nil),
		logging.Module,
		fx.Supply(database.WithModels(
			&user.Role{},
			&user.User{},
			&otp.OneTimeCode{},
			&ledger.OutstandingAccessToken{},
			&ledger.BlacklistedAccessToken{},
			&directory.State{},
			&directory.City{},
			&directory.Zone{},
			&directory.Facility{},
			&directory.Company{},
			&directory.PurposeOfVisit{},
			&visitor.Visitor{},
		)),
		database.Module,
		mail.Module,
		otp.Module,
		ledger.Module,
		token.Module,
		user.Module,
		directory.Module,
		visitor.Module,
		idcard.Module,
		server.Module,
		handlers.Module,
		fx.Invoke(seedRoles),
	)

	app.Run()
}

func seedRoles(users *user.Service) error {
	return users.SeedRoles()
}
