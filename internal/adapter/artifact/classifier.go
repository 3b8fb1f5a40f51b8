package artifact

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/orbitml/exoserve/internal/domain/repository"
)

// logisticArtifact is the serialized form of a fitted binary logistic
// regression over preprocessed features.
type logisticArtifact struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// LogisticModel is a fitted binary classifier. The sigmoid of the linear
// score is the confirmed-class probability.
type LogisticModel struct {
	weights   []float64
	intercept float64
}

// LoadClassifier reads and validates a classifier artifact from disk.
func LoadClassifier(path string) (*LogisticModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading classifier %s: %v", repository.ErrArtifactLoad, path, err)
	}

	var a logisticArtifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: decoding classifier %s: %v", repository.ErrArtifactLoad, path, err)
	}
	if len(a.Weights) == 0 {
		return nil, fmt.Errorf("%w: classifier %s has no weights", repository.ErrArtifactLoad, path)
	}

	return &LogisticModel{weights: a.Weights, intercept: a.Intercept}, nil
}

// NumFeatures returns the input dimension the classifier was trained on.
func (m *LogisticModel) NumFeatures() int {
	return len(m.weights)
}

// PredictProba returns one [false positive, confirmed] probability pair per
// matrix row, in row order.
func (m *LogisticModel) PredictProba(matrix [][]float64) ([][2]float64, error) {
	pairs := make([][2]float64, len(matrix))
	for i, x := range matrix {
		if len(x) != len(m.weights) {
			return nil, fmt.Errorf("row %d has %d features, classifier expects %d", i, len(x), len(m.weights))
		}
		z := m.intercept
		for j, w := range m.weights {
			z += w * x[j]
		}
		confirmed := sigmoid(z)
		pairs[i] = [2]float64{1 - confirmed, confirmed}
	}
	return pairs, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
