package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/patternforge/patternctl/internal/deploy"
	"github.com/patternforge/patternctl/internal/monitor"
	"github.com/patternforge/patternctl/internal/pattern"
	"github.com/patternforge/patternctl/internal/status"
	"github.com/patternforge/patternctl/internal/util/retry"
)

// InstallStages returns the five install stages in dependency order:
// infrastructure before secrets, operators ready before the controller
// deploys, controller before the sync units it materializes.
func InstallStages() []Stage {
	return []Stage{
		&InfraStage{},
		&SecretsStage{},
		&OperatorsStage{},
		&ControllerStage{},
		&ApplicationsStage{},
	}
}

// InfraStage deploys the infrastructure charts one at a time, each with
// the pipeline's retry budget.
type InfraStage struct{}

func (s *InfraStage) Name() string { return "infrastructure" }

func (s *InfraStage) Run(ctx *Context) error {
	for _, c := range ctx.Directory.ByCategory(pattern.CategoryInfrastructure) {
		if err := applyWithRetry(ctx, s.Name(), c); err != nil {
			return err
		}
	}
	return nil
}

// SecretsStage loads locally held secret material into the cluster.
type SecretsStage struct{}

func (s *SecretsStage) Name() string { return "secrets" }

func (s *SecretsStage) Run(ctx *Context) error {
	ok, err := ctx.Secrets.Load(ctx, ctx.Config.Pattern)
	if err != nil {
		return fmt.Errorf("loading secrets: %w", err)
	}
	if !ok {
		return errors.New("secrets loader reported failure")
	}
	return nil
}

// OperatorsStage applies any operator charts, then fans out one
// subscription monitor per operator and waits at the barrier.
type OperatorsStage struct{}

func (s *OperatorsStage) Name() string { return "operators" }

func (s *OperatorsStage) Run(ctx *Context) error {
	operators := ctx.Directory.ByCategory(pattern.CategoryOperator)
	if len(operators) == 0 {
		return nil
	}

	// Subscriptions declared with their own chart are applied here; the
	// rest are expected to be materialized externally and only watched.
	for _, c := range operators {
		if c.ChartRef == "" {
			continue
		}
		if err := applyWithRetry(ctx, s.Name(), c); err != nil {
			return err
		}
	}

	monitors := make([]monitor.Monitor, 0, len(operators))
	for _, c := range operators {
		if m := monitor.ForComponent(c, ctx.Cluster, ctx.Status, ctx.Timeouts); m != nil {
			monitors = append(monitors, m)
		}
	}
	monitor.RunAll(ctx, monitors)

	return barrierVerdict(ctx, s.Name(), operators)
}

// ControllerStage deploys the pattern's controlling chart. Once it is in
// place the reconciling controller begins materializing the application
// sync units the next stage waits on.
type ControllerStage struct{}

func (s *ControllerStage) Name() string { return "controller" }

func (s *ControllerStage) Run(ctx *Context) error {
	for _, c := range ctx.Directory.ByCategory(pattern.CategoryController) {
		if err := applyWithRetry(ctx, s.Name(), c); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationsStage fans out one application monitor per sync unit under
// an overall stage ceiling in addition to each monitor's phase timeouts.
type ApplicationsStage struct{}

func (s *ApplicationsStage) Name() string { return "applications" }

func (s *ApplicationsStage) Run(ctx *Context) error {
	apps := ctx.Directory.ByCategory(pattern.CategoryApplication)
	if len(apps) == 0 {
		return nil
	}

	ceilCtx, cancel := context.WithTimeout(ctx, ctx.Timeouts.ApplicationCeiling)
	defer cancel()

	monitors := make([]monitor.Monitor, 0, len(apps))
	for _, c := range apps {
		if m := monitor.ForComponent(c, ctx.Cluster, ctx.Status, ctx.Timeouts); m != nil {
			monitors = append(monitors, m)
		}
	}
	monitor.RunAll(ceilCtx, monitors)

	return barrierVerdict(ctx, s.Name(), apps)
}

// barrierVerdict evaluates a fan-out stage after its barrier: the stage
// passes only when every governed component reached Success.
func barrierVerdict(ctx *Context, stage string, components []*pattern.Component) error {
	ids := make([]string, 0, len(components))
	for _, c := range components {
		ids = append(ids, c.ID)
	}

	succeeded := ctx.Status.CountIn(status.StateSuccess, ids)
	ctx.Observer.Progress(stage, succeeded, len(ids))

	if succeeded != len(ids) {
		return fmt.Errorf("%d of %d components did not reach Success", len(ids)-succeeded, len(ids))
	}
	return nil
}

// applyWithRetry issues one deploy action under the pipeline's fixed
// backoff retry budget and mirrors the outcome into the status store.
func applyWithRetry(ctx *Context, stage string, c *pattern.Component) error {
	if c.ChartRef == "" {
		ctx.Status.Update(c.ID, status.StateFailed, "no chart declared")
		return fmt.Errorf("component %s has no chart to deploy", c.ID)
	}

	ns := c.Namespace.Value
	if !c.Namespace.Known {
		ctx.Status.Update(c.ID, status.StateFailed,
			fmt.Sprintf("namespace unresolved: %s", c.Namespace.Reason))
		return fmt.Errorf("component %s namespace unresolved", c.ID)
	}

	ctx.Status.Update(c.ID, status.StateInstalling, fmt.Sprintf("applying %s", c.ChartRef))
	ctx.Observer.Event(Event{
		Type:      EventActionApplying,
		Stage:     stage,
		Component: c.ID,
		Message:   fmt.Sprintf("applying %s into %s", c.ChartRef, ns),
	})

	var lastOutput string
	attempt := 0
	err := retry.Do(ctx, func() error {
		attempt++
		res := ctx.Deployer.Apply(ctx, c.ChartRef, deploy.Options{
			Namespace:   ns,
			ReleaseName: c.ID,
		})
		if !res.Success {
			lastOutput = res.Output
			ctx.Observer.Event(Event{
				Type:      EventActionRetrying,
				Stage:     stage,
				Component: c.ID,
				Message:   fmt.Sprintf("attempt %d failed: %s", attempt, res.Output),
			})
			return errors.New("apply reported failure")
		}
		lastOutput = res.Output
		return nil
	},
		retry.WithAttempts(ctx.Timeouts.DeployAttempts),
		retry.WithFixedDelay(ctx.Timeouts.DeployBackoff),
	)
	if err != nil {
		ctx.Status.Update(c.ID, status.StateFailed,
			fmt.Sprintf("deploy failed after %d attempts: %s", attempt, lastOutput))
		return fmt.Errorf("deploying %s: %w", c.ID, err)
	}

	ctx.Status.Update(c.ID, status.StateSuccess, lastOutput)
	ctx.Observer.Event(Event{
		Type:      EventActionApplied,
		Stage:     stage,
		Component: c.ID,
		Message:   lastOutput,
	})
	return nil
}
