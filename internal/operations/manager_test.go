package operations_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanprep/internal/config"
	"loanprep/internal/infrastructure"
	"loanprep/internal/operations"
	"loanprep/internal/operations/testutil"
)

func TestManagerRegisterStage(t *testing.T) {
	manager := operations.NewManager(nil, nil)
	require.NotNil(t, manager.GetRegistry())

	require.NoError(t, manager.RegisterStage(testutil.CreateSuccessfulStage("test", "Test Step")))
	assert.True(t, manager.GetRegistry().Has("test"))
}

func TestManagerExecuteSequential(t *testing.T) {
	rec := &testutil.ExecutionRecorder{}
	registry := operations.NewRegistry()
	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, registry.Register(testutil.CreateRecordingStage(id, rec)))
	}

	manager := operations.NewManager(registry, nil)
	state, err := manager.Execute(context.Background(), operations.OperationRequest{
		ID:         "run-seq",
		Parameters: map[string]interface{}{"source": "test"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second", "third"}, rec.Order())
	testutil.AssertOperationStatus(t, state, operations.OperationStatusCompleted)
	for _, id := range []string{"first", "second", "third"} {
		testutil.AssertStageCompleted(t, state, id)
	}
	v, ok := state.GetContext("source")
	assert.True(t, ok)
	assert.Equal(t, "test", v)
	assert.Equal(t, "run-seq", state.ID)
}

func TestManagerExecuteGeneratesID(t *testing.T) {
	manager := operations.NewManager(testutil.CreateTestRegistry(), nil)
	state, err := manager.Execute(context.Background(), operations.OperationRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, state.ID)
}

func TestManagerStopsAtFirstFailure(t *testing.T) {
	cause := errors.New("parse failure")
	last := testutil.CreateSuccessfulStage("last", "Last")

	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("first", "First")))
	require.NoError(t, registry.Register(testutil.CreateFailingStage("broken", "Broken", cause)))
	require.NoError(t, registry.Register(last))

	state, err := operations.NewManager(registry, nil).Execute(context.Background(), operations.OperationRequest{ID: "run-fail"})
	require.Error(t, err)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "broken", operations.FailedStep(err))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(err))

	testutil.AssertOperationStatus(t, state, operations.OperationStatusFailed)
	testutil.AssertStageCompleted(t, state, "first")
	testutil.AssertStageFailed(t, state, "broken")
	testutil.AssertStageSkipped(t, state, "last")
	assert.Equal(t, "Previous step broken failed", state.GetStage("last").Message)
	assert.Zero(t, last.GetExecuteCalls())
	assert.True(t, state.HasFailures())
	assert.True(t, state.IsComplete())
}

func TestManagerValidationFailure(t *testing.T) {
	guarded := &testutil.MockStage{
		IDValue:   "guarded",
		NameValue: "Guarded",
		ValidateFunc: func(state *operations.OperationState) error {
			return errors.New("no table loaded")
		},
	}
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(guarded))

	state, err := operations.NewManager(registry, nil).Execute(context.Background(), operations.OperationRequest{ID: "run-val"})
	require.Error(t, err)

	assert.Equal(t, operations.ErrorTypeValidation, operations.GetErrorType(err))
	assert.Contains(t, err.Error(), "no table loaded")
	assert.Zero(t, guarded.GetExecuteCalls())
	assert.Equal(t, 1, guarded.GetValidateCalls())
	testutil.AssertStageFailed(t, state, "guarded")
}

func TestManagerSkipper(t *testing.T) {
	optional := &testutil.MockSkippingStage{
		MockStage: testutil.MockStage{IDValue: "optional", NameValue: "Optional"},
		Reason:    "disabled by configuration",
	}
	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(optional))
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("after", "After")))

	state, err := operations.NewManager(registry, nil).Execute(context.Background(), operations.OperationRequest{ID: "run-skip"})
	require.NoError(t, err)

	testutil.AssertOperationStatus(t, state, operations.OperationStatusCompleted)
	testutil.AssertStageSkipped(t, state, "optional")
	assert.Equal(t, "disabled by configuration", state.GetStage("optional").Message)
	assert.Zero(t, optional.GetExecuteCalls())
	assert.Zero(t, optional.GetValidateCalls())
	testutil.AssertStageCompleted(t, state, "after")
}

func TestManagerCancellationBetweenSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	canceller := &testutil.MockStage{
		IDValue:   "canceller",
		NameValue: "Canceller",
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			cancel()
			return nil
		},
	}
	next := testutil.CreateSuccessfulStage("next", "Next")

	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(canceller))
	require.NoError(t, registry.Register(next))

	state, err := operations.NewManager(registry, nil).Execute(ctx, operations.OperationRequest{ID: "run-cancel"})
	require.Error(t, err)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, operations.ErrorTypeCancellation, operations.GetErrorType(err))
	testutil.AssertOperationStatus(t, state, operations.OperationStatusCancelled)
	testutil.AssertStageCompleted(t, state, "canceller")
	testutil.AssertStageSkipped(t, state, "next")
	assert.Zero(t, next.GetExecuteCalls())
}

func TestManagerRecordsMetrics(t *testing.T) {
	providers, err := infrastructure.InitializeOTel(config.TelemetryConfig{
		ServiceName:    "loanprep-test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, nil)
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	tracer, err := operations.NewOperationTracer(providers)
	require.NoError(t, err)

	registry := operations.NewRegistry()
	require.NoError(t, registry.Register(testutil.CreateSuccessfulStage("ok", "OK")))
	require.NoError(t, registry.Register(testutil.CreateFailingStage("bad", "Bad", nil)))

	_, err = operations.NewManager(registry, tracer).Execute(context.Background(), operations.OperationRequest{ID: "run-metrics"})
	require.ErrorIs(t, err, testutil.ErrMockFailure)

	families, err := providers.Registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.Contains(t, names, "pipeline_runs_total")
	assert.Contains(t, names, "pipeline_step_executions_total")

	path := filepath.Join(t.TempDir(), "metrics", "loanprep.prom")
	require.NoError(t, providers.WriteMetricsFile(path))
	assert.FileExists(t, path)
}
