package pipeline

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/patternforge/patternctl/internal/auditlog"
)

// Observer defines the interface for structured observability during a run.
type Observer interface {
	// Printf emits an unstructured log line.
	Printf(format string, v ...interface{})

	// Event emits a structured event.
	Event(event Event)

	// Progress reports progress within a stage.
	Progress(stage string, current, total int)
}

// Event represents a structured run event.
type Event struct {
	Type      EventType
	Stage     string
	Component string
	Message   string
	Timestamp time.Time
}

// EventType represents the type of run event.
type EventType string

const (
	// EventStageStarted indicates a pipeline stage has started.
	EventStageStarted EventType = "stage.started"
	// EventStageCompleted indicates a pipeline stage completed successfully.
	EventStageCompleted EventType = "stage.completed"
	// EventStageFailed indicates a pipeline stage failed.
	EventStageFailed EventType = "stage.failed"

	// EventActionApplying indicates a deploy action is being issued.
	EventActionApplying EventType = "action.applying"
	// EventActionApplied indicates a deploy action succeeded.
	EventActionApplied EventType = "action.applied"
	// EventActionRetrying indicates a failed deploy action will be retried.
	EventActionRetrying EventType = "action.retrying"

	// EventResourceDeleting indicates a resource delete was requested.
	EventResourceDeleting EventType = "resource.deleting"
	// EventResourceDeleted indicates a resource disappeared after delete.
	EventResourceDeleted EventType = "resource.deleted"
	// EventResourceEscalated indicates a stuck resource had finalizers
	// stripped and was force-deleted.
	EventResourceEscalated EventType = "resource.escalated"
	// EventResourceSkipped indicates a protected resource was left alone.
	EventResourceSkipped EventType = "resource.skipped"
)

// ConsoleObserver implements Observer using the standard log package,
// teeing every event line into the run's audit log.
type ConsoleObserver struct {
	audit    *auditlog.Log
	category auditlog.Category
}

// NewConsoleObserver creates a console observer. The audit log may be nil
// in tests.
func NewConsoleObserver(audit *auditlog.Log, cat auditlog.Category) *ConsoleObserver {
	return &ConsoleObserver{audit: audit, category: cat}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
	if o.audit != nil {
		o.audit.Printf(o.category, format, v...)
	}
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	o.Printf("%s", formatEvent(event))
}

// Progress implements Observer.
func (o *ConsoleObserver) Progress(stage string, current, total int) {
	if total == 0 {
		o.Printf("[%s] progress: %d/%d", stage, current, total)
		return
	}
	percentage := (current * 100) / total
	o.Printf("[%s] progress: %d/%d (%d%%)", stage, current, total, percentage)
}

func formatEvent(event Event) string {
	var parts []string
	parts = append(parts, string(event.Type))
	if event.Stage != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Stage))
	}
	if event.Component != "" {
		parts = append(parts, fmt.Sprintf("component=%s", event.Component))
	}
	parts = append(parts, event.Message)
	return strings.Join(parts, " ")
}

// LogStageStart logs a stage start event.
func LogStageStart(observer Observer, stage string) {
	observer.Event(Event{Type: EventStageStarted, Stage: stage, Message: "starting"})
}

// LogStageComplete logs a stage completion event.
func LogStageComplete(observer Observer, stage string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventStageCompleted,
		Stage:   stage,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogStageFailed logs a stage failure event.
func LogStageFailed(observer Observer, stage string, err error) {
	observer.Event(Event{
		Type:    EventStageFailed,
		Stage:   stage,
		Message: fmt.Sprintf("failed: %v", err),
	})
}
