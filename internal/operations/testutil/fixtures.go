package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loanprep/internal/config"
	"loanprep/internal/operations"
)

// ErrMockFailure is returned by failing mock steps
var ErrMockFailure = errors.New("mock step failure")

// CreateTestRegistry creates a registry with three succeeding steps
func CreateTestRegistry() *operations.Registry {
	registry := operations.NewRegistry()
	registry.Register(CreateSuccessfulStage("stage1", "step 1"))
	registry.Register(CreateSuccessfulStage("stage2", "step 2"))
	registry.Register(CreateSuccessfulStage("stage3", "step 3"))
	return registry
}

// CreateSuccessfulStage creates a step that always succeeds
func CreateSuccessfulStage(id, name string) *MockStage {
	return &MockStage{
		IDValue:   id,
		NameValue: name,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			if s := state.GetStage(id); s != nil {
				s.SetMetadata("ran", true)
			}
			return nil
		},
	}
}

// CreateFailingStage creates a step whose Execute returns err, or
// ErrMockFailure when err is nil
func CreateFailingStage(id, name string, err error) *MockStage {
	if err == nil {
		err = ErrMockFailure
	}
	return &MockStage{
		IDValue:   id,
		NameValue: name,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			return err
		},
	}
}

// CreateRecordingStage creates a step that records its ID when executed
func CreateRecordingStage(id string, rec *ExecutionRecorder) *MockStage {
	return &MockStage{
		IDValue:   id,
		NameValue: id,
		ExecuteFunc: func(ctx context.Context, state *operations.OperationState) error {
			rec.Record(id)
			return nil
		},
	}
}

// LoanCSVHeader is the column layout of the loan prediction dataset
const LoanCSVHeader = "Loan_ID,Gender,Married,Dependents,Education,Self_Employed," +
	"ApplicantIncome,CoapplicantIncome,LoanAmount,Loan_Amount_Term,Credit_History," +
	"Property_Area,Loan_Status"

// LoanRows is a small sample of the loan prediction dataset with missing
// values, an outlier income and both label values.
var LoanRows = []string{
	"LP001,Male,Yes,0,Graduate,No,5000,0,150,360,1,Urban,Y",
	"LP002,Male,No,1,Graduate,,3000,1500,,360,1,Rural,N",
	"LP003,Female,Yes,2,Not Graduate,Yes,2500,2000,120,,0,Semiurban,Y",
	"LP004,,Yes,0,Graduate,No,4000,0,100,180,,Urban,Y",
	"LP005,Male,,3+,Not Graduate,No,81000,0,300,360,1,Semiurban,N",
	"LP006,Female,No,0,Graduate,No,3500,1000,110,360,0,Rural,N",
}

// LoanCSV returns the sample dataset as CSV text
func LoanCSV(rows ...string) string {
	if len(rows) == 0 {
		rows = LoanRows
	}
	return LoanCSVHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

// WriteLoanCSV writes content to a file in a temp dir and returns its path
func WriteLoanCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "loans.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

// PipelineConfig returns the default pipeline config reading input and
// writing into a fresh temp dir
func PipelineConfig(t *testing.T, input string) config.PipelineConfig {
	t.Helper()
	cfg := config.Default().Pipeline
	cfg.InputPath = input
	cfg.OutputPath = filepath.Join(t.TempDir(), "out", "loans_clean.csv")
	return cfg
}
