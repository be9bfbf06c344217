package operations

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/goccy/go-json"

	"loanprep/internal/config"
	"loanprep/internal/dataprocessing"
	"loanprep/internal/exporter"
)

// RunManifest summarizes a pipeline run: what was read, which parameters
// were fitted and what was written. Statistics that are NaN (a constant
// column, an all-missing column) are null in JSON.
type RunManifest struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	InputPath       string `json:"input_path"`
	OutputPath      string `json:"output_path,omitempty"`
	Encoder         string `json:"encoder"`
	OutlierClipping bool   `json:"outlier_clipping"`

	InputRows int      `json:"input_rows"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`

	Imputation *dataprocessing.ImputeReport `json:"imputation,omitempty"`
	Fences     []FenceSummary               `json:"fences,omitempty"`
	Encoding   *dataprocessing.Encoding     `json:"encoding,omitempty"`
	Scaling    []ScaleSummary               `json:"scaling,omitempty"`

	Stages []StageExecution `json:"stages"`
	Error  string           `json:"error,omitempty"`
}

// FenceSummary is a clipping fence with NaN bounds as null
type FenceSummary struct {
	Column  string   `json:"column"`
	Q1      *float64 `json:"q1"`
	Q3      *float64 `json:"q3"`
	Lower   *float64 `json:"lower"`
	Upper   *float64 `json:"upper"`
	Clipped int      `json:"clipped"`
}

// ScaleSummary is a column's scaling parameters with NaN as null
type ScaleSummary struct {
	Column   string   `json:"column"`
	Mean     *float64 `json:"mean"`
	Std      *float64 `json:"std"`
	Constant bool     `json:"constant,omitempty"`
}

// StageExecution records the outcome of one step
type StageExecution struct {
	StageID   string                 `json:"stage_id"`
	StageName string                 `json:"stage_name"`
	Status    string                 `json:"status"`
	Duration  string                 `json:"duration"`
	Message   string                 `json:"message,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// NewRunManifest builds the manifest from a finished operation state
func NewRunManifest(state *OperationState, cfg config.PipelineConfig) *RunManifest {
	m := &RunManifest{
		RunID:           state.ID,
		Status:          string(state.GetStatus()),
		StartTime:       state.StartTime,
		Duration:        state.Duration().String(),
		InputPath:       cfg.InputPath,
		Encoder:         cfg.Encoder,
		OutlierClipping: cfg.Outliers.Enabled,
		Columns:         []string{},
		Stages:          []StageExecution{},
	}
	if state.EndTime != nil {
		m.EndTime = *state.EndTime
	}
	if state.Error != nil {
		m.Error = state.Error.Error()
	}

	if t := state.Table(); t != nil {
		m.Rows = t.NumRows()
		m.Columns = t.Names()
	}
	if v, ok := state.GetContext(ContextKeyInputRows); ok {
		m.InputRows, _ = v.(int)
	}
	if v, ok := state.GetContext(ContextKeyOutputPath); ok {
		m.OutputPath, _ = v.(string)
	}
	if v, ok := state.GetContext(ContextKeyImputeReport); ok {
		m.Imputation, _ = v.(*dataprocessing.ImputeReport)
	}
	if v, ok := state.GetContext(ContextKeyEncoding); ok {
		m.Encoding, _ = v.(*dataprocessing.Encoding)
	}
	if v, ok := state.GetContext(ContextKeyFences); ok {
		fences, _ := v.([]dataprocessing.Fence)
		for _, f := range fences {
			m.Fences = append(m.Fences, FenceSummary{
				Column:  f.Column,
				Q1:      finite(f.Q1),
				Q3:      finite(f.Q3),
				Lower:   finite(f.Lower),
				Upper:   finite(f.Upper),
				Clipped: f.Clipped,
			})
		}
	}
	if v, ok := state.GetContext(ContextKeyScaleStats); ok {
		stats, _ := v.([]dataprocessing.ScaleStats)
		for _, s := range stats {
			m.Scaling = append(m.Scaling, ScaleSummary{
				Column:   s.Column,
				Mean:     finite(s.Mean),
				Std:      finite(s.Std),
				Constant: s.Constant(),
			})
		}
	}

	for _, step := range state.OrderedStages() {
		step.mu.RLock()
		exec := StageExecution{
			StageID:   step.ID,
			StageName: step.Name,
			Status:    string(step.Status),
			Message:   step.Message,
		}
		if len(step.Metadata) > 0 {
			exec.Metadata = make(map[string]interface{}, len(step.Metadata))
			for k, v := range step.Metadata {
				exec.Metadata[k] = v
			}
		}
		step.mu.RUnlock()
		exec.Duration = step.Duration().String()
		m.Stages = append(m.Stages, exec)
	}

	return m
}

// StageStatus returns the recorded status of a step, empty if unknown
func (m *RunManifest) StageStatus(stageID string) string {
	for _, s := range m.Stages {
		if s.StageID == stageID {
			return s.Status
		}
	}
	return ""
}

// SaveToFile writes the manifest as indented JSON
func (m *RunManifest) SaveToFile(path string) error {
	if err := exporter.WriteJSON(path, m); err != nil {
		return fmt.Errorf("failed to write manifest file: %w", err)
	}
	return nil
}

// LoadManifestFromFile loads a manifest from a JSON file
func LoadManifestFromFile(path string) (*RunManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	var manifest RunManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	return &manifest, nil
}
