package consumer

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/domain"
	"github.com/selvester69/notifications/internal/orchestrator"
)

// ProcessorStageConfig configures the processor stage
type ProcessorStageConfig struct {
	Concurrency int
}

// ProcessorStage runs the notification fan-out for each envelope using
// a bounded pool of workers
type ProcessorStage struct {
	processor EventProcessor
	config    ProcessorStageConfig
	log       *zap.Logger
}

// NewProcessorStage creates a new processor stage
func NewProcessorStage(processor EventProcessor, config ProcessorStageConfig, log *zap.Logger) *ProcessorStage {
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	return &ProcessorStage{
		processor: processor,
		config:    config,
		log:       log,
	}
}

// Start consumes envelopes until the input channel closes
func (p *ProcessorStage) Start(ctx context.Context, in <-chan *Envelope) {
	var wg sync.WaitGroup
	wg.Add(p.config.Concurrency)

	for i := 0; i < p.config.Concurrency; i++ {
		go func() {
			defer wg.Done()
			for envelope := range in {
				p.process(ctx, envelope)
			}
		}()
	}

	wg.Wait()
	p.log.Info("Processor stage shutting down")
}

// process runs one event and settles its envelope. Fatal-permanent
// failures ack: redelivering the same event cannot fix a missing
// template. Transient failures nack so SQS redelivers.
func (p *ProcessorStage) process(ctx context.Context, envelope *Envelope) {
	outcomes, err := p.processor.ProcessEvent(ctx, envelope.Event)

	switch {
	case err == nil:
		p.log.Info("Event processed",
			zap.String("event_id", envelope.Event.EventID),
			zap.String("event_type", envelope.Event.EventType),
			zap.Int("channels_attempted", len(outcomes)),
			zap.Int("channels_delivered", countDelivered(outcomes)))
		if err := envelope.Ack(ctx); err != nil {
			p.log.Error("Failed to ack envelope",
				zap.String("event_id", envelope.Event.EventID),
				zap.Error(err))
		}

	case errors.Is(err, orchestrator.ErrTemplateNotFound):
		p.log.Error("Event dropped: no template resolvable",
			zap.String("event_id", envelope.Event.EventID),
			zap.String("event_type", envelope.Event.EventType),
			zap.Error(err))
		if err := envelope.Ack(ctx); err != nil {
			p.log.Error("Failed to ack envelope",
				zap.String("event_id", envelope.Event.EventID),
				zap.Error(err))
		}

	default:
		p.log.Warn("Event processing failed, leaving message for redelivery",
			zap.String("event_id", envelope.Event.EventID),
			zap.String("event_type", envelope.Event.EventType),
			zap.Error(err))
		if err := envelope.Nack(ctx); err != nil {
			p.log.Error("Failed to nack envelope",
				zap.String("event_id", envelope.Event.EventID),
				zap.Error(err))
		}
	}
}

func countDelivered(outcomes []domain.DispatchOutcome) int {
	delivered := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			delivered++
		}
	}
	return delivered
}
