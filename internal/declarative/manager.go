package declarative

import (
	"context"
	"fmt"
	"strings"

	"github.com/Recipe-Web-App/system-operations-manager/internal/client"
	"github.com/Recipe-Web-App/system-operations-manager/internal/diff"
	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
	"github.com/Recipe-Web-App/system-operations-manager/internal/history"
	"github.com/Recipe-Web-App/system-operations-manager/internal/log"
)

// Manager exports, diffs, and applies declarative config documents
// against a live gateway.
type Manager struct {
	gateway  client.EntityClient
	recorder history.Recorder
	runID    string
	logger   *log.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithRecorder persists an ApplyOperation per write attempt.
func WithRecorder(r history.Recorder, runID string) ManagerOption {
	return func(m *Manager) {
		m.recorder = r
		m.runID = runID
	}
}

// WithLogger sets the manager's logger.
func WithLogger(l *log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager operating on the given gateway.
func NewManager(gateway client.EntityClient, opts ...ManagerOption) *Manager {
	m := &Manager{
		gateway: gateway,
		logger:  log.DefaultLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ExportState reads the gateway's current entities into a config document.
// Server-managed fields are stripped so the export is portable. Credential
// fields are scrubbed unless includeCredentials is set; scrubbing is the
// default so exports are safe to commit.
func (m *Manager) ExportState(ctx context.Context, only []entity.Type, includeCredentials bool) (*Config, error) {
	cfg := &Config{}
	for _, typ := range selectTypes(only) {
		snapshots, err := m.gateway.List(ctx, typ)
		if err != nil {
			return nil, err
		}

		schema, _ := entity.SchemaFor(typ)
		entries := make([]entity.Fields, 0, len(snapshots))
		for _, snap := range snapshots {
			entries = append(entries, exportFields(snap.Fields, schema, includeCredentials))
		}
		cfg.SetEntities(typ, entries)
	}
	return cfg, nil
}

func exportFields(fields entity.Fields, schema entity.Schema, includeCredentials bool) entity.Fields {
	out := fields.Clone()
	for _, field := range entity.ServerManagedFields {
		delete(out, field)
	}
	if !includeCredentials {
		for _, field := range schema.Credentials {
			delete(out, field)
		}
	}
	return out
}

// EntityUpdate is one live entity whose fields differ from its declared
// entry.
type EntityUpdate struct {
	Name    string             `json:"name"`
	Changes []diff.FieldChange `json:"changes"`
}

// TypePlan is the planned work for one entity type.
type TypePlan struct {
	Type    entity.Type     `json:"type"`
	Creates []entity.Fields `json:"creates,omitempty"`
	Updates []EntityUpdate  `json:"updates,omitempty"`
	Deletes []string        `json:"deletes,omitempty"`
}

// Plan is the full diff between a config document and the live gateway.
// Sections the document does not declare are absent: applying the plan
// never touches unmanaged entity types.
type Plan struct {
	Types []TypePlan `json:"types"`
}

// Empty reports whether the plan contains no work.
func (p *Plan) Empty() bool {
	for _, tp := range p.Types {
		if len(tp.Creates) > 0 || len(tp.Updates) > 0 || len(tp.Deletes) > 0 {
			return false
		}
	}
	return true
}

// Counts tallies planned operations.
func (p *Plan) Counts() (creates, updates, deletes int) {
	for _, tp := range p.Types {
		creates += len(tp.Creates)
		updates += len(tp.Updates)
		deletes += len(tp.Deletes)
	}
	return creates, updates, deletes
}

// Summary renders per-type counts, one line per type with work.
func (p *Plan) Summary() string {
	var b strings.Builder
	for _, tp := range p.Types {
		if len(tp.Creates) == 0 && len(tp.Updates) == 0 && len(tp.Deletes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s: %d to create, %d to update, %d to delete\n",
			tp.Type, len(tp.Creates), len(tp.Updates), len(tp.Deletes))
	}
	c, u, d := p.Counts()
	fmt.Fprintf(&b, "total: %d to create, %d to update, %d to delete", c, u, d)
	return b.String()
}

// DiffConfig compares the document's declared sections against the live
// gateway. Entries are matched by name; field comparison uses the same
// normalization as drift detection, so a freshly exported document diffs
// clean.
func (m *Manager) DiffConfig(ctx context.Context, cfg *Config, only []entity.Type) (*Plan, error) {
	plan := &Plan{}
	for _, typ := range selectTypes(only) {
		if !cfg.Declares(typ) {
			continue
		}

		live, err := m.gateway.List(ctx, typ)
		if err != nil {
			return nil, err
		}

		schema, _ := entity.SchemaFor(typ)
		liveByName := make(map[string]entity.Snapshot, len(live))
		for _, snap := range live {
			liveByName[snap.Name()] = snap
		}

		tp := TypePlan{Type: typ}
		declared := map[string]bool{}
		for _, desired := range cfg.Entities(typ) {
			name := entity.Key(desired, "")
			declared[name] = true

			current, exists := liveByName[name]
			if !exists {
				tp.Creates = append(tp.Creates, desired)
				continue
			}
			// Credential fields a scrubbed export never carries must not
			// count as drift, or a default export would re-apply forever.
			ignore := undeclaredCredentials(schema, desired)
			if drift := diff.DriftFields(typ, desired, current.Fields, ignore...); len(drift) > 0 {
				tp.Updates = append(tp.Updates, EntityUpdate{
					Name:    name,
					Changes: diff.Changes(typ, current.Fields, desired, ignore...),
				})
			}
		}

		for _, snap := range live {
			if !declared[snap.Name()] {
				tp.Deletes = append(tp.Deletes, snap.Name())
			}
		}

		plan.Types = append(plan.Types, tp)
	}
	return plan, nil
}

// ApplyConfig reconciles the gateway toward the document: creates and
// updates run in dependency order, deletes in reverse dependency order.
// An invalid document is rejected before any write. Individual write
// failures are recorded and do not halt the batch. With dryRun set no
// write is attempted; the returned operations describe what would run.
func (m *Manager) ApplyConfig(ctx context.Context, cfg *Config, dryRun bool) ([]history.ApplyOperation, error) {
	if validation := ValidateConfig(cfg); !validation.Valid {
		return nil, errors.New(errors.ErrCodeSchemaInvalid,
			fmt.Sprintf("config has %d validation error(s); run validate for details", len(validation.Errors)))
	}

	plan, err := m.DiffConfig(ctx, cfg, nil)
	if err != nil {
		return nil, err
	}

	planByType := make(map[entity.Type]TypePlan, len(plan.Types))
	for _, tp := range plan.Types {
		planByType[tp.Type] = tp
	}

	var ops []history.ApplyOperation
	for _, typ := range entity.CreateOrder() {
		tp, ok := planByType[typ]
		if !ok {
			continue
		}

		for _, fields := range tp.Creates {
			name := entity.Key(fields, "")
			ops = append(ops, m.execute(ctx, "create", typ, name, fields, dryRun))
		}

		desired := map[string]entity.Fields{}
		for _, fields := range cfg.Entities(typ) {
			desired[entity.Key(fields, "")] = fields
		}
		for _, update := range tp.Updates {
			ops = append(ops, m.execute(ctx, "update", typ, update.Name, desired[update.Name], dryRun))
		}
	}

	for _, typ := range entity.DeleteOrder() {
		tp, ok := planByType[typ]
		if !ok {
			continue
		}
		for _, name := range tp.Deletes {
			ops = append(ops, m.execute(ctx, "delete", typ, name, nil, dryRun))
		}
	}

	return ops, nil
}

func (m *Manager) execute(ctx context.Context, operation string, typ entity.Type, name string, fields entity.Fields, dryRun bool) history.ApplyOperation {
	op := history.NewOperation(m.runID, "gateway", operation, typ, name)
	op.FieldsWritten = fields.Keys()

	if dryRun {
		op.Result = history.ResultSkipped
		return op
	}

	var err error
	switch operation {
	case "create":
		_, err = m.gateway.Create(ctx, typ, fields)
	case "update":
		_, err = m.gateway.Update(ctx, typ, name, fields)
	case "delete":
		err = m.gateway.Delete(ctx, typ, name)
	}

	if err != nil {
		op.Result = history.ResultFailed
		op.Error = err.Error()
		m.logger.WithError(err).Error("apply operation failed",
			"operation", operation, "entity_type", typ, "entity", name)
	} else {
		op.Result = history.ResultSuccess
	}

	m.record(ctx, op)
	return op
}

func (m *Manager) record(ctx context.Context, op history.ApplyOperation) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, op); err != nil {
		m.logger.WithError(err).Warn("failed to record apply operation")
	}
}

// undeclaredCredentials lists the credential fields the declared entry does
// not carry. A scrubbed export omits them, so their live values must not
// register as drift; a declared credential field still diffs normally.
func undeclaredCredentials(schema entity.Schema, declared entity.Fields) []string {
	var out []string
	for _, field := range schema.Credentials {
		if _, ok := declared[field]; !ok {
			out = append(out, field)
		}
	}
	return out
}

func selectTypes(only []entity.Type) []entity.Type {
	if len(only) == 0 {
		return entity.DeclaredTypes()
	}
	ordered := make([]entity.Type, 0, len(only))
	for _, typ := range entity.DeclaredTypes() {
		for _, want := range only {
			if typ == want {
				ordered = append(ordered, typ)
				break
			}
		}
	}
	return ordered
}
