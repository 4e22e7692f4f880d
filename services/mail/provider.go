package mail

import (
	"github.com/spatium-offices/vms/config"
	"github.com/spatium-offices/vms/services/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewMailService),
	fx.Provide(NewNotifierProvider),
)

func NewMailService(cfg *config.Config, logger *logging.Service) (*Service, error) {
	return NewService(&cfg.Mail, logger)
}

func NewNotifierProvider(cfg *config.Config, svc *Service) *Notifier {
	return NewNotifier(cfg, svc)
}
