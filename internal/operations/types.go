package operations

// Pipeline step identifiers, in execution order
const (
	StageIDLoad        = "load"
	StageIDPrune       = "prune"
	StageIDImpute      = "impute"
	StageIDClip        = "clip"
	StageIDTarget      = "target"
	StageIDCategorical = "categorical"
	StageIDScale       = "scale"
	StageIDValidate    = "validate"
	StageIDWrite       = "write"
)

// Pipeline step names
const (
	StageNameLoad        = "Loader"
	StageNamePrune       = "Column Pruner"
	StageNameImpute      = "Missing-Value Imputer"
	StageNameClip        = "Outlier Clipper"
	StageNameTarget      = "Target Encoder"
	StageNameCategorical = "Categorical Encoder"
	StageNameScale       = "Numeric Scaler"
	StageNameValidate    = "Validator"
	StageNameWrite       = "Writer"
)

// Context keys for artifacts steps leave in the operation state
const (
	ContextKeyImputeReport = "impute_report"
	ContextKeyFences       = "fences"
	ContextKeyEncoding     = "encoding"
	ContextKeyScaleStats   = "scale_stats"
	ContextKeyInputRows    = "input_rows"
	ContextKeyRowsWritten  = "rows_written"
	ContextKeyOutputPath   = "output_path"
)

// OperationRequest represents a request to execute the pipeline
type OperationRequest struct {
	ID         string                 `json:"id"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}
