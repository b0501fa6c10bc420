// Package sync executes resolved conflicts against the gateway and, when
// configured, mirrors them to Konnect. Writes are sequential best-effort:
// there is no transaction spanning the two systems and no rollback of the
// primary write when the mirror fails.
package sync

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Recipe-Web-App/system-operations-manager/internal/client"
	"github.com/Recipe-Web-App/system-operations-manager/internal/conflict"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/history"
	"github.com/Recipe-Web-App/system-operations-manager/internal/log"
)

// WriteOutcome records one write attempt against one system.
type WriteOutcome struct {
	System string
	Entity entity.Snapshot
	Err    error
}

// OK reports whether the write succeeded.
func (w *WriteOutcome) OK() bool {
	return w != nil && w.Err == nil
}

// DualWriteResult is the outcome of applying one resolution. The primary
// (gateway) write happens first; the mirror write is attempted only after
// the primary succeeds, and its failure never rolls the primary back.
type DualWriteResult struct {
	Resolution           conflict.Resolution
	GatewayResult        *WriteOutcome
	KonnectResult        *WriteOutcome
	KonnectError         error
	KonnectSkipped       bool
	KonnectNotConfigured bool
}

// IsFullySynced reports whether the Konnect write succeeded and nothing
// was skipped.
func (r DualWriteResult) IsFullySynced() bool {
	return !r.KonnectSkipped &&
		r.GatewayResult.OK() &&
		r.KonnectResult.OK()
}

// PartialSuccess reports whether the primary write succeeded but the
// mirror errored. Callers must surface this distinctly from outright
// failure: only the mirror needs a retry.
func (r DualWriteResult) PartialSuccess() bool {
	return r.GatewayResult.OK() && r.KonnectError != nil
}

// Failed reports whether the primary write was attempted and rejected.
func (r DualWriteResult) Failed() bool {
	return r.GatewayResult != nil && r.GatewayResult.Err != nil
}

// Orchestrator applies resolutions to the gateway and mirrors them to
// Konnect when configured.
type Orchestrator struct {
	gateway  client.EntityClient
	konnect  client.EntityClient
	recorder history.Recorder
	runID    string
	logger   *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithKonnect enables mirroring to a Konnect control plane.
func WithKonnect(c client.EntityClient) Option {
	return func(o *Orchestrator) { o.konnect = c }
}

// WithRecorder persists an ApplyOperation per write attempt.
func WithRecorder(r history.Recorder, runID string) Option {
	return func(o *Orchestrator) {
		o.recorder = r
		o.runID = runID
	}
}

// WithLogger sets the orchestrator's logger.
func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator writing to the given gateway.
func New(gateway client.EntityClient, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway: gateway,
		logger:  log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Apply executes one resolution.
//
// SKIP writes to neither system. KEEP_TARGET writes nothing: the target
// already holds the desired state by definition of the action. KEEP_SOURCE
// and MERGE write the desired state to the gateway first, then mirror it
// to Konnect when configured.
func (o *Orchestrator) Apply(ctx context.Context, r conflict.Resolution) DualWriteResult {
	result := DualWriteResult{Resolution: r}

	switch r.Action {
	case conflict.Skip:
		result.KonnectSkipped = true
		o.record(ctx, "gateway", r, history.ResultSkipped, nil, nil)
		return result
	case conflict.KeepTarget:
		if o.konnect == nil {
			result.KonnectNotConfigured = true
		}
		return result
	}

	desired := r.DesiredState()
	if err := r.Validate(); err != nil {
		result.GatewayResult = &WriteOutcome{System: "gateway", Err: err}
		return result
	}

	snap, err := o.gateway.Update(ctx, r.Conflict.EntityType, r.Conflict.EntityName, desired)
	result.GatewayResult = &WriteOutcome{System: "gateway", Entity: snap, Err: err}
	o.record(ctx, "gateway", r, resultOf(err), r.Conflict.DriftFields, err)
	if err != nil {
		o.logger.WithError(err).Error("gateway write failed",
			"entity_type", r.Conflict.EntityType, "entity", r.Conflict.EntityName)
		return result
	}

	if o.konnect == nil {
		result.KonnectNotConfigured = true
		return result
	}

	mirror, err := o.konnect.Update(ctx, r.Conflict.EntityType, r.Conflict.EntityName, desired)
	result.KonnectResult = &WriteOutcome{System: "konnect", Entity: mirror, Err: err}
	o.record(ctx, "konnect", r, resultOf(err), r.Conflict.DriftFields, err)
	if err != nil {
		result.KonnectError = err
		o.logger.WithError(err).Warn("mirror write failed; gateway write is not rolled back",
			"entity_type", r.Conflict.EntityType, "entity", r.Conflict.EntityName)
	}

	return result
}

// ApplyAll executes resolutions in dependency order: entity types are
// staged per the static schema ordering, every write of a stage completes
// before the next stage starts, and writes within a stage run
// concurrently. Individual write failures are captured in their results
// and never abort the batch; only context cancellation does.
func (o *Orchestrator) ApplyAll(ctx context.Context, resolutions []conflict.Resolution) ([]DualWriteResult, error) {
	stage := make(map[entity.Type]int, len(entity.CreateOrder()))
	for i, typ := range entity.CreateOrder() {
		stage[typ] = i
	}

	byStage := make(map[int][]int)
	for i, r := range resolutions {
		s := stage[r.Conflict.EntityType]
		byStage[s] = append(byStage[s], i)
	}

	stages := make([]int, 0, len(byStage))
	for s := range byStage {
		stages = append(stages, s)
	}
	sort.Ints(stages)

	results := make([]DualWriteResult, len(resolutions))
	for _, s := range stages {
		g, gctx := errgroup.WithContext(ctx)
		for _, idx := range byStage[s] {
			g.Go(func() error {
				results[idx] = o.Apply(gctx, resolutions[idx])
				return gctx.Err()
			})
		}
		if err := g.Wait(); err != nil {
			return results, err
		}
	}

	return results, nil
}

func (o *Orchestrator) record(ctx context.Context, system string, r conflict.Resolution, result history.Result, fields []string, err error) {
	if o.recorder == nil {
		return
	}

	op := history.NewOperation(o.runID, system, "update", r.Conflict.EntityType, r.Conflict.EntityName)
	op.FieldsWritten = fields
	op.Result = result
	if err != nil {
		op.Error = err.Error()
	}
	if recErr := o.recorder.Record(ctx, op); recErr != nil {
		o.logger.WithError(recErr).Warn("failed to record apply operation")
	}
}

func resultOf(err error) history.Result {
	if err != nil {
		return history.ResultFailed
	}
	return history.ResultSuccess
}
