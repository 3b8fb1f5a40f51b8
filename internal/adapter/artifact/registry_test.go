package artifact

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orbitml/exoserve/internal/domain/entity"
	"github.com/orbitml/exoserve/internal/domain/repository"
)

func writeArtifactPair(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	model := filepath.Join(dir, "model.json")
	pre := filepath.Join(dir, "preprocessor.json")
	require.NoError(t, os.WriteFile(model,
		[]byte(`{"weights":[1,1],"intercept":0}`), 0o644))
	require.NoError(t, os.WriteFile(pre,
		[]byte(`{"features":["koi_period","koi_depth"],"medians":[1,1],"means":[0,0],"scales":[1,1]}`), 0o644))
	return Paths{Model: model, Preprocessor: pre}
}

func TestRegistryGetOrLoad(t *testing.T) {
	t.Run("loads on first use and caches", func(t *testing.T) {
		paths := writeArtifactPair(t)
		reg := NewRegistry(map[entity.DatasetType]Paths{"kepler": paths}, zap.NewNop())

		var loads int32
		inner := reg.loadPair
		reg.loadPair = func(p Paths) (*repository.ModelEntry, error) {
			atomic.AddInt32(&loads, 1)
			return inner(p)
		}

		entry, err := reg.GetOrLoad(context.Background(), "kepler")
		require.NoError(t, err)
		assert.NotNil(t, entry.Classifier)
		assert.NotNil(t, entry.Preprocessor)
		assert.False(t, entry.LoadedAt.IsZero())

		again, err := reg.GetOrLoad(context.Background(), "kepler")
		require.NoError(t, err)
		assert.Same(t, entry, again)
		assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	})

	t.Run("unknown dataset type", func(t *testing.T) {
		reg := NewRegistry(map[entity.DatasetType]Paths{"kepler": writeArtifactPair(t)}, zap.NewNop())

		_, err := reg.GetOrLoad(context.Background(), "unknown_x")

		assert.ErrorIs(t, err, repository.ErrUnknownDatasetType)
		assert.ErrorContains(t, err, "kepler")
	})

	t.Run("missing artifact", func(t *testing.T) {
		dir := t.TempDir()
		reg := NewRegistry(map[entity.DatasetType]Paths{
			"kepler": {Model: filepath.Join(dir, "gone.json"), Preprocessor: filepath.Join(dir, "gone2.json")},
		}, zap.NewNop())

		_, err := reg.GetOrLoad(context.Background(), "kepler")

		assert.ErrorIs(t, err, repository.ErrArtifactLoad)
		assert.False(t, reg.Describe("kepler").Cached)
	})

	t.Run("classifier and preprocessor dimensions must agree", func(t *testing.T) {
		paths := writeArtifactPair(t)
		require.NoError(t, os.WriteFile(paths.Model,
			[]byte(`{"weights":[1,1,1],"intercept":0}`), 0o644))
		reg := NewRegistry(map[entity.DatasetType]Paths{"kepler": paths}, zap.NewNop())

		_, err := reg.GetOrLoad(context.Background(), "kepler")

		assert.ErrorIs(t, err, repository.ErrArtifactLoad)
		assert.ErrorContains(t, err, "expects 3 features")
	})

	t.Run("concurrent first requests share one load", func(t *testing.T) {
		paths := writeArtifactPair(t)
		reg := NewRegistry(map[entity.DatasetType]Paths{"kepler": paths}, zap.NewNop())

		var loads int32
		release := make(chan struct{})
		inner := reg.loadPair
		reg.loadPair = func(p Paths) (*repository.ModelEntry, error) {
			atomic.AddInt32(&loads, 1)
			<-release
			return inner(p)
		}

		const callers = 8
		var wg sync.WaitGroup
		entries := make([]*repository.ModelEntry, callers)
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				entries[i], errs[i] = reg.GetOrLoad(context.Background(), "kepler")
			}(i)
		}

		// Let every caller reach the in-flight load before releasing it.
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()

		for i := 0; i < callers; i++ {
			require.NoError(t, errs[i])
			assert.Same(t, entries[0], entries[i])
		}
		assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	})

	t.Run("canceled caller abandons wait while load warms cache", func(t *testing.T) {
		paths := writeArtifactPair(t)
		reg := NewRegistry(map[entity.DatasetType]Paths{"kepler": paths}, zap.NewNop())

		var loads int32
		release := make(chan struct{})
		inner := reg.loadPair
		reg.loadPair = func(p Paths) (*repository.ModelEntry, error) {
			atomic.AddInt32(&loads, 1)
			<-release
			return inner(p)
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := reg.GetOrLoad(ctx, "kepler")
			done <- err
		}()

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)

		close(release)
		entry, err := reg.GetOrLoad(context.Background(), "kepler")
		require.NoError(t, err)
		assert.NotNil(t, entry)
		assert.Equal(t, int32(1), atomic.LoadInt32(&loads))
	})
}

func TestRegistryDescribe(t *testing.T) {
	t.Run("reports artifact presence and cache state", func(t *testing.T) {
		paths := writeArtifactPair(t)
		reg := NewRegistry(map[entity.DatasetType]Paths{"kepler": paths}, zap.NewNop())

		status := reg.Describe("kepler")
		assert.True(t, status.ModelExists)
		assert.True(t, status.PreprocessorExists)
		assert.False(t, status.Cached)

		_, err := reg.GetOrLoad(context.Background(), "kepler")
		require.NoError(t, err)

		status = reg.Describe("kepler")
		assert.True(t, status.Cached)
	})

	t.Run("missing artifacts report false without loading", func(t *testing.T) {
		dir := t.TempDir()
		reg := NewRegistry(map[entity.DatasetType]Paths{
			"tess": {Model: filepath.Join(dir, "no.json"), Preprocessor: filepath.Join(dir, "no2.json")},
		}, zap.NewNop())

		status := reg.Describe("tess")
		assert.False(t, status.ModelExists)
		assert.False(t, status.PreprocessorExists)
		assert.False(t, status.Cached)
	})

	t.Run("unconfigured dataset type is all false", func(t *testing.T) {
		reg := NewRegistry(nil, zap.NewNop())
		assert.Equal(t, repository.ModelStatus{}, reg.Describe("unknown_x"))
	})
}

func TestRegistryDatasetTypes(t *testing.T) {
	reg := NewRegistry(map[entity.DatasetType]Paths{
		"tess":   {},
		"kepler": {},
		"k2":     {},
	}, zap.NewNop())

	assert.Equal(t, []entity.DatasetType{"k2", "kepler", "tess"}, reg.DatasetTypes())
}
