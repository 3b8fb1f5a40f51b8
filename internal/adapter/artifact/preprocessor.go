package artifact

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/orbitml/exoserve/internal/domain/entity"
	"github.com/orbitml/exoserve/internal/domain/repository"
)

// scalerArtifact is the serialized form of a fitted imputing standard scaler.
// All slices are parallel to Features.
type scalerArtifact struct {
	Features []string  `json:"features"`
	Medians  []float64 `json:"medians"`
	Means    []float64 `json:"means"`
	Scales   []float64 `json:"scales"`
}

// StandardScaler is a fitted preprocessing transform. Missing values are
// imputed with the training-set median of the feature, then every feature is
// standardized with its fitted mean and scale. Fitted state is immutable.
type StandardScaler struct {
	features []string
	medians  []float64
	means    []float64
	scales   []float64
}

// LoadPreprocessor reads and validates a scaler artifact from disk.
func LoadPreprocessor(path string) (*StandardScaler, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading preprocessor %s: %v", repository.ErrArtifactLoad, path, err)
	}

	var a scalerArtifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: decoding preprocessor %s: %v", repository.ErrArtifactLoad, path, err)
	}

	n := len(a.Features)
	if n == 0 {
		return nil, fmt.Errorf("%w: preprocessor %s declares no features", repository.ErrArtifactLoad, path)
	}
	if len(a.Medians) != n || len(a.Means) != n || len(a.Scales) != n {
		return nil, fmt.Errorf("%w: preprocessor %s has inconsistent parameter lengths", repository.ErrArtifactLoad, path)
	}
	for i, s := range a.Scales {
		if s == 0 || math.IsNaN(s) {
			return nil, fmt.Errorf("%w: preprocessor %s has invalid scale for feature %q", repository.ErrArtifactLoad, path, a.Features[i])
		}
	}

	return &StandardScaler{
		features: a.Features,
		medians:  a.Medians,
		means:    a.Means,
		scales:   a.Scales,
	}, nil
}

// FeatureNames returns the expected input schema in training order.
func (s *StandardScaler) FeatureNames() []string {
	return append([]string(nil), s.features...)
}

// Transform converts rows into a standardized numeric matrix in row order.
func (s *StandardScaler) Transform(rows []entity.FeatureRow) ([][]float64, error) {
	matrix := make([][]float64, len(rows))
	for i, row := range rows {
		vec := make([]float64, len(s.features))
		for j, name := range s.features {
			value, ok := row[name]
			if !ok {
				return nil, fmt.Errorf("row %d: missing feature %q", i, name)
			}

			f, err := toFloat(value)
			if err != nil {
				return nil, fmt.Errorf("row %d: feature %q: %v", i, name, err)
			}
			if math.IsNaN(f) {
				f = s.medians[j]
			}
			vec[j] = (f - s.means[j]) / s.scales[j]
		}
		matrix[i] = vec
	}
	return matrix, nil
}

// toFloat coerces a decoded JSON scalar to float64. nil maps to NaN so the
// caller can impute it.
func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return math.NaN(), nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	default:
		return 0, fmt.Errorf("non-numeric value %v", v)
	}
}
