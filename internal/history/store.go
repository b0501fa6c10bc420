// Package history persists one ApplyOperation record per write attempt.
// The records back a later `history`/`rollback` surface and supply the
// per-field provenance the merge engine needs for auto-merge.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	// Go SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
	"github.com/Recipe-Web-App/system-operations-manager/internal/errors"
)

// Provenance attributes an entity's drifted fields to the side(s) that
// wrote them since the last full sync. The merge engine consumes this to
// decide which fields can be merged automatically.
type Provenance struct {
	// SourceFields are fields written on the source system.
	SourceFields map[string]bool
	// TargetFields are fields written on the target system.
	TargetFields map[string]bool
}

// Result is the outcome of one write attempt.
type Result string

const (
	// ResultSuccess means the write was accepted.
	ResultSuccess Result = "success"
	// ResultFailed means the write was attempted and rejected.
	ResultFailed Result = "failed"
	// ResultSkipped means the write was deliberately not attempted.
	ResultSkipped Result = "skipped"
)

// ApplyOperation records one write attempt against one system.
type ApplyOperation struct {
	ID            string      `json:"id"`
	RunID         string      `json:"run_id"`
	System        string      `json:"system"`
	Operation     string      `json:"operation"`
	EntityType    entity.Type `json:"entity_type"`
	EntityKey     string      `json:"entity_key"`
	FieldsWritten []string    `json:"fields_written,omitempty"`
	Result        Result      `json:"result"`
	Error         string      `json:"error,omitempty"`
	AppliedAt     time.Time   `json:"applied_at"`
}

// NewOperation builds a record with a fresh id and timestamp.
func NewOperation(runID, system, operation string, typ entity.Type, key string) ApplyOperation {
	return ApplyOperation{
		ID:         uuid.NewString(),
		RunID:      runID,
		System:     system,
		Operation:  operation,
		EntityType: typ,
		EntityKey:  key,
		AppliedAt:  time.Now().UTC(),
	}
}

// Recorder accepts apply operation records. The orchestrator and the
// declarative manager write through this interface; a nil recorder is a
// valid no-op.
type Recorder interface {
	Record(ctx context.Context, op ApplyOperation) error
}

const schema = `
CREATE TABLE IF NOT EXISTS apply_operations (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	system TEXT NOT NULL,
	operation TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_key TEXT NOT NULL,
	fields_written TEXT,
	result TEXT NOT NULL,
	error TEXT,
	applied_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_apply_operations_entity
	ON apply_operations (entity_type, entity_key);
CREATE INDEX IF NOT EXISTS idx_apply_operations_run
	ON apply_operations (run_id);
`

// Store is a SQLite-backed operation log.
type Store struct {
	db *sql.DB
}

// Open creates or opens the history database at path. Use ":memory:" for
// an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryStore, "open history store", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeHistoryStore, "initialize history schema", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record persists one apply operation.
func (s *Store) Record(ctx context.Context, op ApplyOperation) error {
	fields, err := json.Marshal(op.FieldsWritten)
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryStore, "marshal fields", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO apply_operations
			(id, run_id, system, operation, entity_type, entity_key, fields_written, result, error, applied_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.RunID, op.System, op.Operation, string(op.EntityType), op.EntityKey,
		string(fields), string(op.Result), op.Error, op.AppliedAt)
	if err != nil {
		return errors.Wrap(errors.ErrCodeHistoryStore, "record apply operation", err)
	}
	return nil
}

// Operations returns every record for one run, oldest first.
func (s *Store) Operations(ctx context.Context, runID string) ([]ApplyOperation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, system, operation, entity_type, entity_key, fields_written, result, error, applied_at
		FROM apply_operations WHERE run_id = ? ORDER BY applied_at, id`, runID)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryStore, "query operations", err)
	}
	defer rows.Close()

	return scanOperations(rows)
}

// ProvenanceFor derives the per-field provenance for one entity: which
// fields each system has successfully written since the entity's last
// write that reached both systems.
func (s *Store) ProvenanceFor(ctx context.Context, typ entity.Type, key, sourceSystem, targetSystem string) (*Provenance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, system, operation, entity_type, entity_key, fields_written, result, error, applied_at
		FROM apply_operations
		WHERE entity_type = ? AND entity_key = ? AND result = ?
		ORDER BY applied_at, id`,
		string(typ), key, string(ResultSuccess))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryStore, "query provenance", err)
	}
	defer rows.Close()

	ops, err := scanOperations(rows)
	if err != nil {
		return nil, err
	}

	// Find the last run that wrote this entity to both systems; only
	// writes after that point count as unsynced changes.
	lastSynced := -1
	for i, op := range ops {
		if op.System != sourceSystem {
			continue
		}
		for j := i + 1; j < len(ops); j++ {
			if ops[j].RunID == op.RunID && ops[j].System == targetSystem {
				lastSynced = j
			}
		}
	}

	prov := &Provenance{
		SourceFields: map[string]bool{},
		TargetFields: map[string]bool{},
	}
	for i, op := range ops {
		if i <= lastSynced {
			continue
		}
		switch op.System {
		case sourceSystem:
			for _, f := range op.FieldsWritten {
				prov.SourceFields[f] = true
			}
		case targetSystem:
			for _, f := range op.FieldsWritten {
				prov.TargetFields[f] = true
			}
		}
	}
	return prov, nil
}

func scanOperations(rows *sql.Rows) ([]ApplyOperation, error) {
	var ops []ApplyOperation
	for rows.Next() {
		var op ApplyOperation
		var typ, result, fields string
		var errMsg sql.NullString
		if err := rows.Scan(&op.ID, &op.RunID, &op.System, &op.Operation, &typ, &op.EntityKey,
			&fields, &result, &errMsg, &op.AppliedAt); err != nil {
			return nil, errors.Wrap(errors.ErrCodeHistoryStore, "scan operation", err)
		}
		op.EntityType = entity.Type(typ)
		op.Result = Result(result)
		op.Error = errMsg.String
		if fields != "" && fields != "null" {
			if err := json.Unmarshal([]byte(fields), &op.FieldsWritten); err != nil {
				return nil, errors.Wrap(errors.ErrCodeHistoryStore,
					fmt.Sprintf("decode fields for operation %s", op.ID), err)
			}
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeHistoryStore, "iterate operations", err)
	}
	return ops, nil
}

// Summarize renders per-run counts for reporting.
func Summarize(ops []ApplyOperation) string {
	var success, failed, skipped int
	for _, op := range ops {
		switch op.Result {
		case ResultSuccess:
			success++
		case ResultFailed:
			failed++
		case ResultSkipped:
			skipped++
		}
	}
	parts := []string{
		fmt.Sprintf("%d succeeded", success),
		fmt.Sprintf("%d failed", failed),
	}
	if skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", skipped))
	}
	return strings.Join(parts, ", ")
}

var _ Recorder = (*Store)(nil)
