package token

import (
	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/services/ledger"
	"github.com/spatium-offices/vms/services/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewProvider),
)

func NewProvider(cfg *config.Config, ledgerSvc *ledger.Service, logger *logging.Service) *Service {
	return NewService(cfg, ledgerSvc, logger)
}
