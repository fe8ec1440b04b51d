// Package events publishes conversion lifecycle events. Publishing is
// best-effort: a broker failure is logged and never fails the conversion
// that triggered it.
package events

import (
	"context"

	"github.com/dtrkit/dtr-backend/pkg/logger"
	"github.com/dtrkit/dtr-backend/pkg/messaging"
)

// Publisher is the messaging surface this package needs; satisfied by
// messaging.Publisher and by the test mock.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// ConversionEventPublisher emits conversion events on the dtr.events
// exchange. A nil inner publisher disables publishing entirely, which is how
// CLI runs without a broker operate.
type ConversionEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewConversionEventPublisher creates an event publisher. Pass a nil
// publisher to disable event emission.
func NewConversionEventPublisher(pub Publisher, log *logger.Logger) *ConversionEventPublisher {
	return &ConversionEventPublisher{
		publisher: pub,
		logger:    log.WithComponent("events"),
	}
}

// ConversionCompleted emits dtr.conversion.completed.
func (p *ConversionEventPublisher) ConversionCompleted(ctx context.Context, event *messaging.ConversionCompletedEvent) {
	if p.publisher == nil {
		return
	}

	if err := p.publisher.Publish(ctx, messaging.EventConversionCompleted, event); err != nil {
		p.logger.Warn().
			Err(err).
			Str("source", event.SourceFilename).
			Msg("failed to publish conversion completed event")
	}
}

// ConversionFailed emits dtr.conversion.failed.
func (p *ConversionEventPublisher) ConversionFailed(ctx context.Context, event *messaging.ConversionFailedEvent) {
	if p.publisher == nil {
		return
	}

	if err := p.publisher.Publish(ctx, messaging.EventConversionFailed, event); err != nil {
		p.logger.Warn().
			Err(err).
			Str("source", event.SourceFilename).
			Msg("failed to publish conversion failed event")
	}
}
