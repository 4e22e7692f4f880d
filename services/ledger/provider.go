package ledger

import (
	"time"

	"go.uber.org/fx"
)

const cleanupInterval = time.Hour

var Module = fx.Options(
	fx.Provide(NewService),
	fx.Invoke(StartCleanupWorker),
)

func StartCleanupWorker(svc *Service) {
	svc.StartCleanupWorker(cleanupInterval)
}
