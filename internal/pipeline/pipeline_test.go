package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patternforge/patternctl/internal/config"
	"github.com/patternforge/patternctl/internal/status"
)

// stubStage implements Stage with function fields for testing.
type stubStage struct {
	name string
	run  func(*Context) error
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Run(ctx *Context) error {
	if s.run != nil {
		return s.run(ctx)
	}
	return nil
}

func stubContext() *Context {
	return &Context{
		Context:  context.Background(),
		Config:   &config.Config{Pattern: "qtodo"},
		Status:   status.NewStore(),
		Observer: &mockObserver{},
		Timeouts: fastTimeouts(),
	}
}

func TestRunStages_Sequential(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)
	ctx := stubContext()

	err := RunStages(ctx, []Stage{
		&stubStage{name: "first", run: func(*Context) error { executed = append(executed, "first"); return nil }},
		&stubStage{name: "second", run: func(*Context) error { executed = append(executed, "second"); return nil }},
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, executed)
}

func TestRunStages_StopsOnError(t *testing.T) {
	t.Parallel()
	executed := make([]string, 0)
	ctx := stubContext()

	err := RunStages(ctx, []Stage{
		&stubStage{name: "first", run: func(*Context) error { executed = append(executed, "first"); return nil }},
		&stubStage{name: "second", run: func(*Context) error { return errors.New("quota exceeded") }},
		&stubStage{name: "third", run: func(*Context) error { executed = append(executed, "third"); return nil }},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "second stage failed")
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Equal(t, []string{"first"}, executed)
}

func TestRunStages_EmitsStageEvents(t *testing.T) {
	t.Parallel()
	ctx := stubContext()
	obs := ctx.Observer.(*mockObserver)

	err := RunStages(ctx, []Stage{
		&stubStage{name: "only"},
		&stubStage{name: "broken", run: func(*Context) error { return errors.New("boom") }},
	})

	require.Error(t, err)
	assert.Len(t, obs.eventsOf(EventStageStarted), 2)
	assert.Len(t, obs.eventsOf(EventStageCompleted), 1)
	assert.Len(t, obs.eventsOf(EventStageFailed), 1)
}

func TestRunStages_Empty(t *testing.T) {
	t.Parallel()
	require.NoError(t, RunStages(stubContext(), nil))
}
