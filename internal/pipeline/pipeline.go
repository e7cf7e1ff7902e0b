// Package pipeline runs bulk automated stage advancement over technical
// applications. It adds no authorization of its own: every per-application
// move goes through the workflow engine, which is where denial and locking
// live.
package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/models"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/telemetry"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

const defaultParallelism = 8

// stepComments mirror the messages the automation actor records at each edge
// of the technical chain.
var stepComments = map[string]string{
	workflow.StageApplied:             "Application received and queued for technical review",
	workflow.StageUnderReview:         "Candidate scheduled for technical assessment",
	workflow.StageTechnicalAssessment: "Candidate has passed technical assessment. Interview scheduled.",
	workflow.StageInterview:           "Offer letter generated and sent to candidate",
}

// Pipeline advances eligible applications one ordered step at a time.
type Pipeline struct {
	engine      *workflow.Engine
	store       store.Store
	parallelism int
}

func New(engine *workflow.Engine, st store.Store) *Pipeline {
	return &Pipeline{engine: engine, store: st, parallelism: defaultParallelism}
}

// AdvanceAll moves every technical application currently at fromStage to the
// next stage in the chain and returns how many were advanced. Applications
// that fail individually (for example because a concurrent caller already
// moved them) are skipped; the batch never aborts on a single member.
func (p *Pipeline) AdvanceAll(ctx context.Context, fromStage string) (int, error) {
	next, ok := workflow.NextStage(fromStage)
	if !ok {
		return 0, fmt.Errorf("%w: no automated step starts at %q", workflow.ErrInvalidStage, fromStage)
	}

	apps, err := p.store.ListApplications(ctx, store.Filter{
		Stage:     fromStage,
		Technical: store.TechnicalOnly(),
	})
	if err != nil {
		return 0, fmt.Errorf("list applications at %s: %w", fromStage, err)
	}

	comment := stepComments[fromStage]
	var advanced atomic.Int64

	g := &errgroup.Group{}
	g.SetLimit(p.parallelism)
	for _, app := range apps {
		app := app
		g.Go(func() error {
			if _, err := p.engine.Transition(ctx, app.ID, next, models.RoleAutomation, comment); err != nil {
				// Independent per-application failure; the count only
				// reflects successes.
				return nil
			}
			advanced.Add(1)
			telemetry.AutomationAdvanced.Inc()
			return nil
		})
	}
	_ = g.Wait()

	return int(advanced.Load()), nil
}

// Steps returns the four fixed edges of the technical chain in order. Each
// step is invoked independently by an external trigger, never chained by a
// clock.
func Steps() []string {
	ordered := workflow.OrderedStages()
	return ordered[:len(ordered)-1]
}
