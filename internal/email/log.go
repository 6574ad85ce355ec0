package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/authgate/internal/multifactor"
	"github.com/dropDatabas3/authgate/internal/observability/logger"
)

// LogSender escribe el código en el log en vez de enviarlo. Para desarrollo.
type LogSender struct{}

func (LogSender) SendCode(ctx context.Context, code multifactor.RandomCode) error {
	logger.From(ctx).Info("mfa code issued",
		zap.String("code", code.Value),
		zap.Time("valid_until", code.ValidUntil),
	)
	return nil
}
