package operations_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanprep/internal/operations"
	"loanprep/internal/operations/testutil"
)

func TestRunManifestRoundTrip(t *testing.T) {
	cfg := testutil.PipelineConfig(t, testutil.WriteLoanCSV(t, testutil.LoanCSV()))

	state, err := runPipeline(t, cfg)
	require.NoError(t, err)

	m := operations.NewRunManifest(state, cfg)
	assert.Equal(t, "run-test", m.RunID)
	assert.Equal(t, "completed", m.Status)
	assert.Equal(t, 6, m.InputRows)
	assert.Equal(t, 6, m.Rows)
	assert.Equal(t, cfg.OutputPath, m.OutputPath)
	assert.True(t, m.OutlierClipping)
	assert.NotContains(t, m.Columns, "Loan_ID")
	require.Len(t, m.Stages, 9)
	assert.Equal(t, "completed", m.StageStatus(operations.StageIDWrite))
	assert.Empty(t, m.StageStatus("unknown"))

	require.NotNil(t, m.Imputation)
	assert.Positive(t, m.Imputation.TotalFilled())
	require.NotNil(t, m.Encoding)
	gender, ok := m.Encoding.Lookup("Gender")
	require.True(t, ok)
	assert.Equal(t, []string{"Female", "Male"}, gender.Categories)

	path := filepath.Join(t.TempDir(), "run.manifest.json")
	require.NoError(t, m.SaveToFile(path))

	loaded, err := operations.LoadManifestFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, loaded.RunID)
	assert.Equal(t, m.Columns, loaded.Columns)
	assert.Equal(t, m.Stages[0].StageID, loaded.Stages[0].StageID)
	require.Len(t, loaded.Fences, 3)
	require.NotNil(t, loaded.Fences[0].Upper)
	assert.InDelta(t, 7187.5, *loaded.Fences[0].Upper, 1e-9)
}

func TestRunManifestConstantColumnIsNull(t *testing.T) {
	rows := []string{
		"LP001,Male,Yes,0,Graduate,No,5000,0,150,360,1,Urban,Y",
		"LP002,Female,No,1,Graduate,No,3000,1500,100,360,1,Rural,N",
	}
	cfg := testutil.PipelineConfig(t, testutil.WriteLoanCSV(t, testutil.LoanCSV(rows...)))

	state, err := runPipeline(t, cfg)
	require.NoError(t, err)

	m := operations.NewRunManifest(state, cfg)
	path := filepath.Join(t.TempDir(), "run.manifest.json")
	require.NoError(t, m.SaveToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"column": "Loan_Amount_Term"`)

	loaded, err := operations.LoadManifestFromFile(path)
	require.NoError(t, err)
	for _, s := range loaded.Scaling {
		if s.Column == "Loan_Amount_Term" {
			assert.True(t, s.Constant)
			require.NotNil(t, s.Std)
			assert.Zero(t, *s.Std)
			require.NotNil(t, s.Mean)
			assert.Equal(t, 360.0, *s.Mean)
		}
	}
}

func TestRunManifestFailedRun(t *testing.T) {
	cfg := testutil.PipelineConfig(t, filepath.Join(t.TempDir(), "absent.csv"))

	state, err := runPipeline(t, cfg)
	require.Error(t, err)

	m := operations.NewRunManifest(state, cfg)
	assert.Equal(t, "failed", m.Status)
	assert.Contains(t, m.Error, "absent.csv")
	assert.Empty(t, m.OutputPath)
	assert.Zero(t, m.Rows)
	assert.Equal(t, "failed", m.StageStatus(operations.StageIDLoad))
	assert.Equal(t, "skipped", m.StageStatus(operations.StageIDWrite))
}

func TestLoadManifestFromFileErrors(t *testing.T) {
	_, err := operations.LoadManifestFromFile(filepath.Join(t.TempDir(), "none.json"))
	assert.ErrorContains(t, err, "failed to read manifest file")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = operations.LoadManifestFromFile(bad)
	assert.ErrorContains(t, err, "failed to unmarshal manifest")
}
