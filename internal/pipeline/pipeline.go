package pipeline

import (
	"fmt"
	"time"
)

// Stage defines one gated step of the install pipeline.
type Stage interface {
	// Name returns the human-readable name of this stage.
	Name() string

	// Run executes the stage against the run context.
	Run(ctx *Context) error
}

// RunStages executes all stages sequentially. The first stage failure
// aborts every later stage; already-completed stages are not rolled back.
func RunStages(ctx *Context, stages []Stage) error {
	start := time.Now()
	ctx.Observer.Printf("Starting install of pattern %q with %d stages", ctx.Config.Pattern, len(stages))

	for i, stage := range stages {
		stageStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", stage.Name(), i+1, len(stages))

		LogStageStart(ctx.Observer, name)

		if err := stage.Run(ctx); err != nil {
			LogStageFailed(ctx.Observer, name, err)
			return fmt.Errorf("%s stage failed: %w", stage.Name(), err)
		}

		LogStageComplete(ctx.Observer, name, time.Since(stageStart))
	}

	ctx.Observer.Printf("Install completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}
