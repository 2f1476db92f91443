package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/patternforge/patternctl/internal/cluster"
	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
)

// Subscription watches an operator's OLM subscription through to its
// installed state.
type Subscription struct {
	component *pattern.Component
	cluster   cluster.Interface
	store     *status.Store

	interval       time.Duration
	appearTimeout  time.Duration
	installTimeout time.Duration

	now func() time.Time
}

// NewSubscription creates a subscription monitor for one operator component.
func NewSubscription(c *pattern.Component, cl cluster.Interface, store *status.Store, t *config.Timeouts) *Subscription {
	return &Subscription{
		component:      c,
		cluster:        cl,
		store:          store,
		interval:       t.PollInterval,
		appearTimeout:  t.SubscriptionAppear,
		installTimeout: t.SubscriptionInstall,
		now:            time.Now,
	}
}

// ComponentID implements Monitor.
func (m *Subscription) ComponentID() string {
	return m.component.ID
}

// Run implements Monitor. It exits with the component in a terminal state
// unless the run was cancelled, in which case a non-terminal component is
// marked Aborted.
func (m *Subscription) Run(ctx context.Context) {
	id := m.component.ID
	name := m.component.SubscriptionName
	if name == "" {
		m.store.Update(id, status.StateFailed, "no subscription name resolved")
		return
	}

	ns := m.component.Namespace.Value
	if !m.component.Namespace.Known {
		m.store.Update(id, status.StateFailed,
			fmt.Sprintf("namespace unresolved: %s", m.component.Namespace.Reason))
		return
	}

	m.store.Update(id, status.StateWaiting,
		fmt.Sprintf("waiting for Subscription %s/%s", ns, name))

	// Phase 1: the install intent object appears.
	outcome := pollLoop(ctx, m.now, m.interval, m.appearTimeout, func(ctx context.Context) bool {
		exists, err := m.cluster.SubscriptionExists(ctx, name, ns)
		return err == nil && exists
	})
	switch outcome {
	case pollTimeout:
		m.store.Update(id, status.StateFailed,
			fmt.Sprintf("Subscription %s not created after %d seconds", name, int(m.appearTimeout.Seconds())))
		return
	case pollCancelled:
		m.abort(id)
		return
	}

	m.store.Update(id, status.StateInstalling,
		fmt.Sprintf("Subscription %s accepted, waiting for install", name))

	// Phase 2: OLM reports the terminal AtLatestKnown state.
	outcome = pollLoop(ctx, m.now, m.interval, m.installTimeout, func(ctx context.Context) bool {
		state, err := m.cluster.SubscriptionState(ctx, name, ns)
		return err == nil && state == cluster.SubscriptionAtLatestKnown
	})
	switch outcome {
	case pollTimeout:
		m.store.Update(id, status.StateFailed,
			fmt.Sprintf("Subscription %s not ready after %d seconds", name, int(m.installTimeout.Seconds())))
		return
	case pollCancelled:
		m.abort(id)
		return
	}

	m.store.Update(id, status.StateSuccess,
		fmt.Sprintf("Subscription %s at latest known state", name))
}

func (m *Subscription) abort(id string) {
	if !m.store.Get(id).State.Terminal() {
		m.store.Update(id, status.StateAborted, "run aborted")
	}
}
