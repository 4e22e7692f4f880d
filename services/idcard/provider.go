package idcard

import (
	"github.com/spatium-offices/vms/services/mail"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(WireNotifier),
)

type OptionalNotifier struct {
	fx.In
	Notifier *mail.Notifier `optional:"true"`
}

func WireNotifier(svc *Service, opt OptionalNotifier) {
	if opt.Notifier != nil {
		svc.SetNotifier(opt.Notifier)
	}
}
