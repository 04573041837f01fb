package analytics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/kafka"
)

// Publisher ships events to an external sink; *kafka.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector buffers query events and delivers them off the query path. Every
// event is recorded by the aggregator (if any) and published (if a publisher
// is configured). Track never blocks; a full buffer drops the event.
type Collector struct {
	publisher  Publisher
	aggregator *Aggregator
	eventCh    chan QueryEvent
	logger     *slog.Logger
	done       chan struct{}
	closeOnce  sync.Once
}

func NewCollector(publisher Publisher, aggregator *Aggregator, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 1024
	}
	return &Collector{
		publisher:  publisher,
		aggregator: aggregator,
		eventCh:    make(chan QueryEvent, bufferSize),
		logger:     slog.Default().With("component", "analytics-collector"),
		done:       make(chan struct{}),
	}
}

func (c *Collector) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.deliver(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh), "publishing", c.publisher != nil)
}

func (c *Collector) Track(event QueryEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("analytics event dropped (buffer full)", "event_id", event.ID)
	}
}

// Close stops accepting events and waits for the buffer to drain. Track must
// not be called after Close.
func (c *Collector) Close() {
	c.closeOnce.Do(func() {
		close(c.eventCh)
		<-c.done
	})
}

func (c *Collector) deliver(ctx context.Context, event QueryEvent) {
	if c.aggregator != nil {
		c.aggregator.Record(event)
	}
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, kafka.Event{Key: string(event.Type), Value: event}); err != nil {
		c.logger.Error("failed to publish query event", "event_id", event.ID, "error", err)
	}
}

func (c *Collector) drainRemaining() {
	ctx := context.Background()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.deliver(ctx, event)
		default:
			return
		}
	}
}
