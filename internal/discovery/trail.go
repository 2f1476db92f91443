package discovery

import (
	"fmt"
	"sync"
)

// Record is one probe attempt in the discovery audit trail. Records are
// append-only and never mutated within a run.
type Record struct {
	ComponentID string
	Field       string
	Source      string
	Value       string
	Known       bool
	Reason      string
}

// String renders the record as one audit log line.
func (r Record) String() string {
	if r.Known {
		return fmt.Sprintf("%s %s: %q from %s", r.ComponentID, r.Field, r.Value, r.Source)
	}
	return fmt.Sprintf("%s %s: unknown via %s (%s)", r.ComponentID, r.Field, r.Source, r.Reason)
}

// Trail is the append-only audit trail of discovery probes. Appends are
// serialized; reads return copies.
type Trail struct {
	mu      sync.Mutex
	records []Record
}

// NewTrail creates an empty trail.
func NewTrail() *Trail {
	return &Trail{}
}

func (t *Trail) append(r Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, r)
}

// Records returns a copy of all probe records in append order.
func (t *Trail) Records() []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Len returns the number of recorded probes.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
