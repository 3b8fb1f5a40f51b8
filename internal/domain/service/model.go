package service

import "github.com/orbitml/exoserve/internal/domain/entity"

// Preprocessor is a fitted, deterministic transform converting raw feature
// values into the numeric representation a classifier expects. Fitted state
// is immutable; Transform never mutates its input rows.
type Preprocessor interface {
	// FeatureNames returns the expected input schema in training order.
	FeatureNames() []string

	// Transform converts a batch of rows into a numeric matrix, preserving
	// row order. Row i of the matrix corresponds to rows[i].
	Transform(rows []entity.FeatureRow) ([][]float64, error)
}

// Classifier is a fitted binary decision function producing class
// probabilities from preprocessed features.
type Classifier interface {
	// PredictProba returns one [false positive, confirmed] probability pair
	// per matrix row, in row order.
	PredictProba(matrix [][]float64) ([][2]float64, error)
}
