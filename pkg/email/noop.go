package email

import (
	"context"
	"log/slog"
)

// LogRelay logs deliveries without sending anything. Used for local dry runs.
type LogRelay struct {
	logger *slog.Logger
}

// NewLogRelay creates a LogRelay. A nil logger falls back to slog.Default.
func NewLogRelay(logger *slog.Logger) *LogRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogRelay{logger: logger}
}

// Deliver logs the message metadata and reports success
func (r *LogRelay) Deliver(ctx context.Context, req RelayRequest) error {
	r.logger.InfoContext(ctx, "dry_run_relay_delivery",
		"service_id", req.ServiceID,
		"template_id", req.TemplateID,
		"subject", req.Params.Subject,
		"message_len", len(req.Params.Message),
	)
	return nil
}
