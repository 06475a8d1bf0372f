package events

import (
	"context"

	"github.com/rs/zerolog"
)

// LoggingPublisher records events in the service log. It is used when no
// broker is configured.
type LoggingPublisher struct {
	logger zerolog.Logger
}

func NewLoggingPublisher(logger zerolog.Logger) *LoggingPublisher {
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) Publish(_ context.Context, eventType string, payload []byte, partitionKey string) error {
	p.logger.Info().
		Str("event_type", eventType).
		Str("partition_key", partitionKey).
		Int("payload_bytes", len(payload)).
		Msg("event published")
	return nil
}

func (p *LoggingPublisher) Close() error { return nil }

var _ Publisher = (*LoggingPublisher)(nil)
