package operations

import (
	"context"
	"fmt"
	"log/slog"

	"loanprep/internal/config"
	"loanprep/internal/dataprocessing"
	"loanprep/internal/exporter"
)

// stageLogger scopes a logger to one step
func stageLogger(logger *slog.Logger, stageID string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("step", stageID))
}

// NewPipelineRegistry registers the cleaning steps in execution order. The
// clip step is always present and skips itself when clipping is disabled.
func NewPipelineRegistry(cfg config.PipelineConfig, writer *exporter.CSVWriter, logger *slog.Logger) (*Registry, error) {
	if writer == nil {
		writer = exporter.NewCSVWriter(false)
	}

	expected := make([]string, 0, len(cfg.CategoricalColumns)+len(cfg.NumericColumns)+1)
	expected = append(expected, cfg.CategoricalColumns...)
	expected = append(expected, cfg.NumericColumns...)
	expected = append(expected, cfg.TargetColumn)

	registry := NewRegistry()
	steps := []Step{
		NewLoadStage(cfg.InputPath, expected, logger),
		NewPruneStage(cfg.IDColumn, logger),
		NewImputeStage(logger),
		NewClipStage(cfg.Outliers, logger),
		NewTargetStage(cfg.TargetColumn, cfg.TargetMapping, logger),
		NewCategoricalStage(cfg.Encoder, cfg.CategoricalColumns, logger),
		NewScaleStage(cfg.NumericColumns, logger),
		NewValidateStage(cfg.TargetColumn, logger),
		NewWriteStage(cfg.OutputPath, writer, logger),
	}
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// LoadStage reads the input file into the operation state
type LoadStage struct {
	BaseStage
	path     string
	expected []string
	logger   *slog.Logger
}

// NewLoadStage creates a new load Step
func NewLoadStage(path string, expected []string, logger *slog.Logger) *LoadStage {
	return &LoadStage{
		BaseStage: NewBaseStage(StageIDLoad, StageNameLoad),
		path:      path,
		expected:  expected,
		logger:    stageLogger(logger, StageIDLoad),
	}
}

// Validate requires an input path, there is no table yet
func (s *LoadStage) Validate(state *OperationState) error {
	if s.path == "" {
		return fmt.Errorf("input path is empty")
	}
	return nil
}

// Execute loads the input table
func (s *LoadStage) Execute(ctx context.Context, state *OperationState) error {
	t, err := dataprocessing.LoadFile(s.path)
	if err != nil {
		return err
	}

	for _, name := range s.expected {
		if !t.Has(name) {
			s.logger.WarnContext(ctx, "configured_column_missing",
				slog.String("column", name),
				slog.String("path", s.path))
		}
	}

	state.SetTable(t)
	state.SetContext(ContextKeyInputRows, t.NumRows())

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("rows", t.NumRows())
	stepState.SetMetadata("columns", t.NumCols())

	s.logger.InfoContext(ctx, "input_loaded",
		slog.String("path", s.path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return nil
}

// PruneStage drops the identifier column
type PruneStage struct {
	BaseStage
	column string
	logger *slog.Logger
}

// NewPruneStage creates a new prune Step
func NewPruneStage(column string, logger *slog.Logger) *PruneStage {
	return &PruneStage{
		BaseStage: NewBaseStage(StageIDPrune, StageNamePrune),
		column:    column,
		logger:    stageLogger(logger, StageIDPrune),
	}
}

// SkipReason skips the step when no identifier column is configured
func (s *PruneStage) SkipReason(state *OperationState) string {
	if s.column == "" {
		return "no identifier column configured"
	}
	return ""
}

// Execute drops the identifier column if present
func (s *PruneStage) Execute(ctx context.Context, state *OperationState) error {
	t := state.Table()
	dropped := t.Has(s.column)
	state.SetTable(dataprocessing.DropColumn(t, s.column))
	state.GetStage(s.ID()).SetMetadata("dropped", dropped)

	s.logger.InfoContext(ctx, "identifier_pruned",
		slog.String("column", s.column),
		slog.Bool("present", dropped))
	return nil
}

// ImputeStage fills missing values
type ImputeStage struct {
	BaseStage
	logger *slog.Logger
}

// NewImputeStage creates a new impute Step
func NewImputeStage(logger *slog.Logger) *ImputeStage {
	return &ImputeStage{
		BaseStage: NewBaseStage(StageIDImpute, StageNameImpute),
		logger:    stageLogger(logger, StageIDImpute),
	}
}

// Execute imputes every column
func (s *ImputeStage) Execute(ctx context.Context, state *OperationState) error {
	t, report := dataprocessing.ImputeMissing(state.Table())
	state.SetTable(t)
	state.SetContext(ContextKeyImputeReport, report)
	state.GetStage(s.ID()).SetMetadata("filled", report.TotalFilled())

	for _, fill := range report.Fills {
		s.logger.DebugContext(ctx, "column_imputed",
			slog.String("column", fill.Column),
			slog.String("kind", fill.Kind),
			slog.Int("filled", fill.Filled),
			slog.String("value", fill.Value))
	}
	for _, name := range report.Unfillable {
		s.logger.WarnContext(ctx, "column_not_imputable",
			slog.String("column", name),
			slog.String("reason", "no present values"))
	}

	s.logger.InfoContext(ctx, "missing_values_imputed",
		slog.Int("columns", len(report.Fills)),
		slog.Int("cells", report.TotalFilled()))
	return nil
}

// ClipStage limits outliers to the IQR fence
type ClipStage struct {
	BaseStage
	cfg    config.OutlierConfig
	logger *slog.Logger
}

// NewClipStage creates a new clip Step
func NewClipStage(cfg config.OutlierConfig, logger *slog.Logger) *ClipStage {
	if cfg.Factor <= 0 {
		cfg.Factor = dataprocessing.DefaultIQRFactor
	}
	return &ClipStage{
		BaseStage: NewBaseStage(StageIDClip, StageNameClip),
		cfg:       cfg,
		logger:    stageLogger(logger, StageIDClip),
	}
}

// SkipReason skips the step when clipping is disabled
func (s *ClipStage) SkipReason(state *OperationState) string {
	if !s.cfg.Enabled {
		return "outlier clipping disabled"
	}
	return ""
}

// Execute clips the configured columns
func (s *ClipStage) Execute(ctx context.Context, state *OperationState) error {
	t, fences := dataprocessing.ClipOutliers(state.Table(), s.cfg.Columns, s.cfg.Factor)
	state.SetTable(t)
	state.SetContext(ContextKeyFences, fences)

	clipped := 0
	for _, f := range fences {
		clipped += f.Clipped
		s.logger.DebugContext(ctx, "column_clipped",
			slog.String("column", f.Column),
			slog.Float64("lower", f.Lower),
			slog.Float64("upper", f.Upper),
			slog.Int("clipped", f.Clipped))
	}
	state.GetStage(s.ID()).SetMetadata("clipped", clipped)

	s.logger.InfoContext(ctx, "outliers_clipped",
		slog.Int("columns", len(fences)),
		slog.Int("values", clipped),
		slog.Float64("factor", s.cfg.Factor))
	return nil
}

// TargetStage encodes the label column
type TargetStage struct {
	BaseStage
	column  string
	mapping map[string]float64
	logger  *slog.Logger
}

// NewTargetStage creates a new target encoding Step
func NewTargetStage(column string, mapping map[string]float64, logger *slog.Logger) *TargetStage {
	return &TargetStage{
		BaseStage: NewBaseStage(StageIDTarget, StageNameTarget),
		column:    column,
		mapping:   mapping,
		logger:    stageLogger(logger, StageIDTarget),
	}
}

// Execute maps the target labels
func (s *TargetStage) Execute(ctx context.Context, state *OperationState) error {
	t := dataprocessing.EncodeTarget(state.Table(), s.column, s.mapping)
	state.SetTable(t)

	unmapped := 0
	if col, ok := t.Column(s.column); ok {
		unmapped = col.NullCount()
	}
	state.GetStage(s.ID()).SetMetadata("unmapped", unmapped)

	s.logger.InfoContext(ctx, "target_encoded",
		slog.String("column", s.column),
		slog.Int("unmapped", unmapped))
	return nil
}

// CategoricalStage encodes categorical columns with one policy for the run
type CategoricalStage struct {
	BaseStage
	policy  string
	columns []string
	logger  *slog.Logger
}

// NewCategoricalStage creates a new categorical encoding Step
func NewCategoricalStage(policy string, columns []string, logger *slog.Logger) *CategoricalStage {
	return &CategoricalStage{
		BaseStage: NewBaseStage(StageIDCategorical, StageNameCategorical),
		policy:    policy,
		columns:   columns,
		logger:    stageLogger(logger, StageIDCategorical),
	}
}

// Validate checks the policy in addition to the table
func (s *CategoricalStage) Validate(state *OperationState) error {
	if err := s.BaseStage.Validate(state); err != nil {
		return err
	}
	switch s.policy {
	case config.EncoderOrdinal, config.EncoderOneHot:
		return nil
	default:
		return fmt.Errorf("unknown encoder %q", s.policy)
	}
}

// Execute encodes the configured columns
func (s *CategoricalStage) Execute(ctx context.Context, state *OperationState) error {
	var enc *dataprocessing.Encoding
	t := state.Table()

	if s.policy == config.EncoderOneHot {
		var err error
		t, enc, err = dataprocessing.EncodeOneHot(t, s.columns)
		if err != nil {
			return err
		}
	} else {
		t, enc = dataprocessing.EncodeOrdinal(t, s.columns)
	}

	state.SetTable(t)
	state.SetContext(ContextKeyEncoding, enc)
	state.GetStage(s.ID()).SetMetadata("columns", len(enc.Columns))

	for _, ce := range enc.Columns {
		s.logger.DebugContext(ctx, "column_encoded",
			slog.String("column", ce.Column),
			slog.Any("categories", ce.Categories))
	}
	s.logger.InfoContext(ctx, "categoricals_encoded",
		slog.String("policy", enc.Policy),
		slog.Int("columns", len(enc.Columns)),
		slog.Int("output_columns", t.NumCols()))
	return nil
}

// ScaleStage standardizes numeric columns
type ScaleStage struct {
	BaseStage
	columns []string
	logger  *slog.Logger
}

// NewScaleStage creates a new scaling Step
func NewScaleStage(columns []string, logger *slog.Logger) *ScaleStage {
	return &ScaleStage{
		BaseStage: NewBaseStage(StageIDScale, StageNameScale),
		columns:   columns,
		logger:    stageLogger(logger, StageIDScale),
	}
}

// Execute scales the configured columns
func (s *ScaleStage) Execute(ctx context.Context, state *OperationState) error {
	t, stats := dataprocessing.StandardScale(state.Table(), s.columns)
	state.SetTable(t)
	state.SetContext(ContextKeyScaleStats, stats)
	state.GetStage(s.ID()).SetMetadata("columns", len(stats))

	for _, st := range stats {
		if st.Constant() {
			s.logger.WarnContext(ctx, "constant_column_scaled",
				slog.String("column", st.Column),
				slog.String("result", "NaN"))
		}
	}
	s.logger.InfoContext(ctx, "numerics_scaled",
		slog.Int("columns", len(stats)))
	return nil
}

// ValidateStage is the failure gate before any output is written
type ValidateStage struct {
	BaseStage
	column string
	logger *slog.Logger
}

// NewValidateStage creates a new validation Step
func NewValidateStage(column string, logger *slog.Logger) *ValidateStage {
	return &ValidateStage{
		BaseStage: NewBaseStage(StageIDValidate, StageNameValidate),
		column:    column,
		logger:    stageLogger(logger, StageIDValidate),
	}
}

// Execute checks the encoded target column
func (s *ValidateStage) Execute(ctx context.Context, state *OperationState) error {
	if err := dataprocessing.ValidateTarget(state.Table(), s.column); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "target_validated", slog.String("column", s.column))
	return nil
}

// WriteStage writes the final table
type WriteStage struct {
	BaseStage
	path   string
	writer *exporter.CSVWriter
	logger *slog.Logger
}

// NewWriteStage creates a new write Step
func NewWriteStage(path string, writer *exporter.CSVWriter, logger *slog.Logger) *WriteStage {
	return &WriteStage{
		BaseStage: NewBaseStage(StageIDWrite, StageNameWrite),
		path:      path,
		writer:    writer,
		logger:    stageLogger(logger, StageIDWrite),
	}
}

// Validate requires an output path and a table
func (s *WriteStage) Validate(state *OperationState) error {
	if s.path == "" {
		return fmt.Errorf("output path is empty")
	}
	return s.BaseStage.Validate(state)
}

// Execute writes the table as CSV
func (s *WriteStage) Execute(ctx context.Context, state *OperationState) error {
	t := state.Table()
	if err := s.writer.WriteTable(s.path, t); err != nil {
		return err
	}

	state.SetContext(ContextKeyRowsWritten, t.NumRows())
	state.SetContext(ContextKeyOutputPath, s.path)
	state.GetStage(s.ID()).SetMetadata("rows", t.NumRows())

	s.logger.InfoContext(ctx, "output_written",
		slog.String("path", s.path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumCols()))
	return nil
}
