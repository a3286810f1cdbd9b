package report

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/afero"
)

type EventType string

const (
	EventTestStarted    EventType = "test_started"
	EventStepLogged     EventType = "step_logged"
	EventRetryAttempted EventType = "retry_attempted"
	EventTestFinished   EventType = "test_finished"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Test      string
	Step      int
	Selector  string
	Passed    bool
	Failure   string
}

type Collector struct {
	eventCh chan Event
	run     *Run
	logger  *slog.Logger
	done    chan struct{}
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		run:     NewRun(),
		logger:  logger,
		done:    make(chan struct{}),
	}
}

func (c *Collector) EventChannel() chan<- Event {
	return c.eventCh
}

// Emit queues event without blocking. A zero Timestamp is set to now.
func (c *Collector) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case c.eventCh <- event:
	default:
		c.logger.Warn("Report event dropped",
			slog.String("type", string(event.Type)),
			slog.String("test", event.Test))
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.loop(ctx)
}

// Done is closed once the collector stopped and drained its buffer.
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

func (c *Collector) loop(ctx context.Context) {
	c.logger.Info("Report collector started")
	defer c.logger.Info("Report collector stopped")
	defer close(c.done)

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventTestStarted:
		c.run.StartTest(event.Test, event.Timestamp)

	case EventStepLogged:
		c.run.RecordStep(event.Test)

	case EventRetryAttempted:
		c.run.RecordRetry(event.Test)

	case EventTestFinished:
		c.run.FinishTest(event.Test, event.Timestamp, event.Passed, event.Failure)

	default:
		c.logger.Debug("Unknown report event", slog.String("type", string(event.Type)))
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Snapshot {
	return c.run.Snapshot()
}

// WriteJSON writes the current snapshot to path, creating its directory.
func (c *Collector) WriteJSON(fs afero.Fs, path string) error {
	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	dir := filepath.Dir(path)
	if exists, _ := afero.DirExists(fs, dir); !exists {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory %s: %w", dir, err)
		}
	}

	if err := afero.WriteFile(fs, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
