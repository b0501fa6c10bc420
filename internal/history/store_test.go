package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Recipe-Web-App/system-operations-manager/internal/entity"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndOperations(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	op1 := NewOperation("run-1", "gateway", "update", entity.TypeService, "billing")
	op1.FieldsWritten = []string{"host", "port"}
	op1.Result = ResultSuccess
	op1.AppliedAt = base
	require.NoError(t, store.Record(ctx, op1))

	op2 := NewOperation("run-1", "konnect", "update", entity.TypeService, "billing")
	op2.Result = ResultFailed
	op2.Error = "status 502"
	op2.AppliedAt = base.Add(time.Second)
	require.NoError(t, store.Record(ctx, op2))

	ops, err := store.Operations(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, ops, 2)
	assert.Equal(t, []string{"host", "port"}, ops[0].FieldsWritten)
	assert.Equal(t, ResultFailed, ops[1].Result)
	assert.Equal(t, "status 502", ops[1].Error)

	none, err := store.Operations(ctx, "run-other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProvenanceForDisjointWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	gw := NewOperation("run-1", "gateway", "update", entity.TypeService, "billing")
	gw.FieldsWritten = []string{"host"}
	gw.Result = ResultSuccess
	require.NoError(t, store.Record(ctx, gw))

	kn := NewOperation("run-2", "konnect", "update", entity.TypeService, "billing")
	kn.FieldsWritten = []string{"retries"}
	kn.Result = ResultSuccess
	require.NoError(t, store.Record(ctx, kn))

	prov, err := store.ProvenanceFor(ctx, entity.TypeService, "billing", "gateway", "konnect")
	require.NoError(t, err)
	assert.True(t, prov.SourceFields["host"])
	assert.True(t, prov.TargetFields["retries"])
	assert.False(t, prov.SourceFields["retries"])
}

func TestProvenanceIgnoresWritesBeforeLastFullSync(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	// run-1 wrote the entity to both systems: a full sync point.
	gw := NewOperation("run-1", "gateway", "update", entity.TypeService, "billing")
	gw.FieldsWritten = []string{"host"}
	gw.Result = ResultSuccess
	gw.AppliedAt = base
	require.NoError(t, store.Record(ctx, gw))

	kn := NewOperation("run-1", "konnect", "update", entity.TypeService, "billing")
	kn.FieldsWritten = []string{"host"}
	kn.Result = ResultSuccess
	kn.AppliedAt = base.Add(time.Second)
	require.NoError(t, store.Record(ctx, kn))

	// A later write on one side only.
	later := NewOperation("run-2", "gateway", "update", entity.TypeService, "billing")
	later.FieldsWritten = []string{"retries"}
	later.Result = ResultSuccess
	later.AppliedAt = base.Add(2 * time.Second)
	require.NoError(t, store.Record(ctx, later))

	prov, err := store.ProvenanceFor(ctx, entity.TypeService, "billing", "gateway", "konnect")
	require.NoError(t, err)
	assert.False(t, prov.SourceFields["host"], "writes before the sync point are not drift provenance")
	assert.True(t, prov.SourceFields["retries"])
	assert.Empty(t, prov.TargetFields)
}

func TestProvenanceExcludesFailedWrites(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	op := NewOperation("run-1", "gateway", "update", entity.TypeService, "billing")
	op.FieldsWritten = []string{"host"}
	op.Result = ResultFailed
	require.NoError(t, store.Record(ctx, op))

	prov, err := store.ProvenanceFor(ctx, entity.TypeService, "billing", "gateway", "konnect")
	require.NoError(t, err)
	assert.Empty(t, prov.SourceFields)
}

func TestSummarize(t *testing.T) {
	ops := []ApplyOperation{
		{Result: ResultSuccess},
		{Result: ResultSuccess},
		{Result: ResultFailed},
		{Result: ResultSkipped},
	}
	assert.Equal(t, "2 succeeded, 1 failed, 1 skipped", Summarize(ops))
	assert.Equal(t, "1 succeeded, 0 failed", Summarize([]ApplyOperation{{Result: ResultSuccess}}))
}
