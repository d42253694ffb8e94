package consumer

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"

	"github.com/selvester69/notifications/internal/config"
	"github.com/selvester69/notifications/internal/queue"
)

// Consumer orchestrates a pipeline of stages to process SQS messages
type Consumer struct {
	receiver  *Receiver
	parser    *ParserStage
	processor *ProcessorStage
}

// NewConsumer creates a new consumer with a pipeline architecture
func NewConsumer(cfg *config.Config, queueConsumer queue.QueueConsumer, processor EventProcessor, log *zap.Logger) *Consumer {
	receiver := NewReceiver(queueConsumer, ReceiverConfig{
		MaxMessages:     10,
		WaitTimeSeconds: 20,
		BufferSize:      100,
	}, log)

	parser := NewParserStage(queueConsumer, NewJSONEventParser(), log)

	processorStage := NewProcessorStage(processor, ProcessorStageConfig{
		Concurrency: cfg.Worker.Concurrency,
	}, log)

	return &Consumer{
		receiver:  receiver,
		parser:    parser,
		processor: processorStage,
	}
}

// Start begins the consumer pipeline
func (c *Consumer) Start(ctx context.Context) error {
	messageChan := make(chan types.Message, 100)
	envelopeChan := make(chan *Envelope, 100)

	var wg sync.WaitGroup

	wg.Add(3)

	// Stage 1: Receive messages from SQS
	go func() {
		defer wg.Done()
		c.receiver.Start(ctx, messageChan)
	}()

	// Stage 2: Parse messages into envelopes
	go func() {
		defer wg.Done()
		c.parser.Start(ctx, messageChan, envelopeChan)
	}()

	// Stage 3: Fan each event out to its channels
	go func() {
		defer wg.Done()
		c.processor.Start(ctx, envelopeChan)
	}()

	wg.Wait()
	return nil
}
