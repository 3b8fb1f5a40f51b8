package artifact

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitml/exoserve/internal/domain/repository"
)

func TestLoadClassifier(t *testing.T) {
	t.Run("loads valid artifact", func(t *testing.T) {
		path := writeArtifactFile(t, "clf.json", `{"weights":[0.5,-0.25],"intercept":0.1}`)

		clf, err := LoadClassifier(path)

		assert.NoError(t, err)
		assert.Equal(t, 2, clf.NumFeatures())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadClassifier(filepath.Join(t.TempDir(), "absent.json"))
		assert.ErrorIs(t, err, repository.ErrArtifactLoad)
	})

	t.Run("corrupt JSON", func(t *testing.T) {
		path := writeArtifactFile(t, "clf.json", `not json`)
		_, err := LoadClassifier(path)
		assert.ErrorIs(t, err, repository.ErrArtifactLoad)
	})

	t.Run("no weights", func(t *testing.T) {
		path := writeArtifactFile(t, "clf.json", `{"weights":[],"intercept":0}`)
		_, err := LoadClassifier(path)
		assert.ErrorIs(t, err, repository.ErrArtifactLoad)
	})
}

func TestLogisticModelPredictProba(t *testing.T) {
	path := writeArtifactFile(t, "clf.json", `{"weights":[1],"intercept":0}`)
	clf, err := LoadClassifier(path)
	require.NoError(t, err)

	t.Run("sigmoid of zero score is even odds", func(t *testing.T) {
		pairs, err := clf.PredictProba([][]float64{{0}})

		assert.NoError(t, err)
		assert.InDelta(t, 0.5, pairs[0][0], 1e-9)
		assert.InDelta(t, 0.5, pairs[0][1], 1e-9)
	})

	t.Run("pairs sum to one", func(t *testing.T) {
		pairs, err := clf.PredictProba([][]float64{{-3}, {0.7}, {42}})

		assert.NoError(t, err)
		for _, pair := range pairs {
			assert.InDelta(t, 1.0, pair[0]+pair[1], 1e-6)
		}
	})

	t.Run("positive score favors confirmed", func(t *testing.T) {
		pairs, err := clf.PredictProba([][]float64{{2}})

		assert.NoError(t, err)
		assert.Greater(t, pairs[0][1], pairs[0][0])
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := clf.PredictProba([][]float64{{1, 2}})
		assert.ErrorContains(t, err, "expects 1")
	})
}
