package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/orbitml/exoserve/internal/domain/entity"
	"github.com/orbitml/exoserve/internal/domain/repository"
)

// Error definitions for the predict usecase. Registry failures
// (repository.ErrUnknownDatasetType, repository.ErrArtifactLoad) propagate
// unwrapped.
var (
	ErrMalformedInput  = errors.New("malformed input")
	ErrFeatureMismatch = errors.New("feature mismatch")
	ErrInternal        = errors.New("internal invariant violation")
)

var predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exoserve_predictions_total",
	Help: "Classified rows by dataset type.",
}, []string{"dataset_type"})

// PredictInput represents the body of a prediction request. Data is kept raw
// so the normalizer can detect its shape structurally.
type PredictInput struct {
	DatasetType string          `json:"dataset_type" binding:"required"`
	Data        json.RawMessage `json:"data" binding:"required"`
}

// PredictOutput represents the prediction response payload.
type PredictOutput struct {
	Predictions   []entity.Label `json:"predictions"`
	Probabilities [][2]float64   `json:"probabilities"`
	DatasetType   string         `json:"dataset_type"`
	NumSamples    int            `json:"num_samples"`
}

// PredictUsecase defines the prediction-serving business logic.
type PredictUsecase interface {
	// Predict classifies a batch of transit candidates. Results preserve
	// input row order; a failing batch produces no partial results.
	Predict(ctx context.Context, input *PredictInput) (*PredictOutput, error)

	// ListModels reports artifact presence and cache state per dataset type.
	ListModels(ctx context.Context) map[string]repository.ModelStatus

	// AvailableDatasets returns the configured dataset types in sorted order.
	AvailableDatasets() []string
}

type predictUsecase struct {
	registry repository.ModelRegistry
	ignored  map[entity.DatasetType][]string
	log      *zap.Logger
}

// NewPredictUsecase creates a new predict usecase. ignored lists the raw
// input columns dropped per dataset type before schema validation.
func NewPredictUsecase(registry repository.ModelRegistry, ignored map[entity.DatasetType][]string, log *zap.Logger) PredictUsecase {
	return &predictUsecase{
		registry: registry,
		ignored:  ignored,
		log:      log,
	}
}

func (u *predictUsecase) Predict(ctx context.Context, input *PredictInput) (*PredictOutput, error) {
	dt := entity.ParseDatasetType(input.DatasetType)

	rows, err := normalizeData(input.Data)
	if err != nil {
		return nil, err
	}

	entry, err := u.registry.GetOrLoad(ctx, dt)
	if err != nil {
		return nil, err
	}

	rows = u.dropIgnored(dt, rows)

	if err := validateSchema(rows, entry.Preprocessor.FeatureNames()); err != nil {
		return nil, err
	}

	matrix, err := entry.Preprocessor.Transform(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	pairs, err := entry.Classifier.PredictProba(matrix)
	if err != nil {
		u.log.Error("classifier rejected preprocessed batch",
			zap.String("dataset_type", string(dt)),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if len(pairs) != len(rows) {
		u.log.Error("prediction count does not match row count",
			zap.String("dataset_type", string(dt)),
			zap.Int("rows", len(rows)),
			zap.Int("predictions", len(pairs)))
		return nil, fmt.Errorf("%w: got %d predictions for %d rows", ErrInternal, len(pairs), len(rows))
	}

	predictionsTotal.WithLabelValues(string(dt)).Add(float64(len(rows)))
	u.log.Info("batch classified",
		zap.String("dataset_type", string(dt)),
		zap.Int("num_samples", len(rows)))

	return assemble(dt, pairs), nil
}

func (u *predictUsecase) ListModels(_ context.Context) map[string]repository.ModelStatus {
	out := make(map[string]repository.ModelStatus)
	for _, dt := range u.registry.DatasetTypes() {
		out[string(dt)] = u.registry.Describe(dt)
	}
	return out
}

func (u *predictUsecase) AvailableDatasets() []string {
	types := u.registry.DatasetTypes()
	out := make([]string, len(types))
	for i, dt := range types {
		out[i] = string(dt)
	}
	return out
}

// dropIgnored removes the configured identifier/leakage columns for the
// dataset type, plus any error-limit column (name containing "lim"), from
// every row. Unknown names in the ignore list are tolerated.
func (u *predictUsecase) dropIgnored(dt entity.DatasetType, rows []entity.FeatureRow) []entity.FeatureRow {
	ignored := make(map[string]bool, len(u.ignored[dt]))
	for _, name := range u.ignored[dt] {
		ignored[name] = true
	}

	drop := func(name string) bool {
		return ignored[name] || strings.Contains(name, "lim")
	}

	out := make([]entity.FeatureRow, len(rows))
	for i, row := range rows {
		out[i] = row.Without(drop)
	}
	return out
}

// validateSchema checks that the batch's feature-name set equals the
// preprocessor's expected schema. Rows share one key set by construction, so
// row 0 stands for the batch.
func validateSchema(rows []entity.FeatureRow, expected []string) error {
	have := make(map[string]bool, len(rows[0]))
	for name := range rows[0] {
		have[name] = true
	}
	want := make(map[string]bool, len(expected))
	for _, name := range expected {
		want[name] = true
	}

	var missing, unexpected []string
	for name := range want {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	for name := range have {
		if !want[name] {
			unexpected = append(unexpected, name)
		}
	}
	if len(missing) == 0 && len(unexpected) == 0 {
		return nil
	}

	sort.Strings(missing)
	sort.Strings(unexpected)

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing features [%s]", strings.Join(missing, ", ")))
	}
	if len(unexpected) > 0 {
		parts = append(parts, fmt.Sprintf("unexpected features [%s]", strings.Join(unexpected, ", ")))
	}
	return fmt.Errorf("%w: row 0 has %s", ErrFeatureMismatch, strings.Join(parts, " and "))
}

// assemble packages the probability pairs into the response payload,
// deriving labels with the fixed confirmed-probability threshold.
func assemble(dt entity.DatasetType, pairs [][2]float64) *PredictOutput {
	predictions := make([]entity.Label, len(pairs))
	probabilities := make([][2]float64, len(pairs))
	for i, pair := range pairs {
		result := entity.NewPredictionResult(pair[entity.ProbConfirmed])
		predictions[i] = result.Label
		probabilities[i] = result.Probabilities
	}
	return &PredictOutput{
		Predictions:   predictions,
		Probabilities: probabilities,
		DatasetType:   string(dt),
		NumSamples:    len(pairs),
	}
}
