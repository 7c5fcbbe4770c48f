package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/khetisathi/khetisathi-backend/pkg/logger"
)

// Template identifiers handed to the delivery channel. The channel owns the
// actual message copy per template and language.
const (
	TemplateOfferCreated  = "offer_created"
	TemplateOrderAssigned = "order_assigned"
	TemplateOrderShortage = "order_shortage"
)

// Sender delivers one rendered notification to a recipient. Implementations
// wrap SMS or push gateways; delivery failures are reported, never retried
// here.
type Sender interface {
	Send(ctx context.Context, recipient uuid.UUID, templateID string, variables map[string]string) error
}

// LogSender writes deliveries to the log instead of an external gateway.
// Used in development and as the fallback when no gateway is configured.
type LogSender struct {
	logg *logger.Logger
}

// NewLogSender builds a log-only sender.
func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, recipient uuid.UUID, templateID string, variables map[string]string) error {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"recipient":   recipient.String(),
		"template_id": templateID,
		"variables":   variables,
	})
	s.logg.Info(ctx, "notification delivered to log")
	return nil
}
