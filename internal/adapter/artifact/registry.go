package artifact

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/orbitml/exoserve/internal/domain/entity"
	"github.com/orbitml/exoserve/internal/domain/repository"
)

var modelLoads = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exoserve_model_loads_total",
	Help: "Model artifact loads by dataset type and outcome.",
}, []string{"dataset_type", "status"})

// Paths locates the artifact pair for one dataset type.
type Paths struct {
	Model        string
	Preprocessor string
}

// Registry loads artifact pairs on first use and caches them for the process
// lifetime. The cache is append-only and never evicted; entries are immutable
// after insertion, so cached reads need no coordination beyond the map lock.
type Registry struct {
	table map[entity.DatasetType]Paths
	log   *zap.Logger

	mu      sync.RWMutex
	entries map[entity.DatasetType]*repository.ModelEntry

	group singleflight.Group

	// loadPair is swapped out by tests to count and gate loads.
	loadPair func(p Paths) (*repository.ModelEntry, error)
}

// NewRegistry creates a registry over a static dataset-type table.
func NewRegistry(table map[entity.DatasetType]Paths, log *zap.Logger) *Registry {
	r := &Registry{
		table:   table,
		log:     log,
		entries: make(map[entity.DatasetType]*repository.ModelEntry),
	}
	r.loadPair = r.loadFromDisk
	return r
}

// GetOrLoad returns the cached entry for the dataset type, loading it on
// first use. Concurrent first callers for the same dataset type share one
// load; a canceled context abandons the wait while the load completes in the
// background to warm the cache.
func (r *Registry) GetOrLoad(ctx context.Context, dt entity.DatasetType) (*repository.ModelEntry, error) {
	r.mu.RLock()
	entry := r.entries[dt]
	r.mu.RUnlock()
	if entry != nil {
		return entry, nil
	}

	paths, ok := r.table[dt]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)",
			repository.ErrUnknownDatasetType, dt, strings.Join(r.available(), ", "))
	}

	ch := r.group.DoChan(string(dt), func() (any, error) {
		return r.load(dt, paths)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*repository.ModelEntry), nil
	}
}

// Describe reports artifact presence on disk and cache state. It never loads.
func (r *Registry) Describe(dt entity.DatasetType) repository.ModelStatus {
	paths, ok := r.table[dt]
	if !ok {
		return repository.ModelStatus{}
	}

	status := repository.ModelStatus{
		ModelExists:        fileExists(paths.Model),
		PreprocessorExists: fileExists(paths.Preprocessor),
	}

	r.mu.RLock()
	_, status.Cached = r.entries[dt]
	r.mu.RUnlock()

	return status
}

// DatasetTypes returns the configured dataset types in sorted order.
func (r *Registry) DatasetTypes() []entity.DatasetType {
	types := make([]entity.DatasetType, 0, len(r.table))
	for dt := range r.table {
		types = append(types, dt)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func (r *Registry) load(dt entity.DatasetType, paths Paths) (*repository.ModelEntry, error) {
	// A loser of the singleflight race may arrive here after the winner
	// already populated the cache.
	r.mu.RLock()
	entry := r.entries[dt]
	r.mu.RUnlock()
	if entry != nil {
		return entry, nil
	}

	start := time.Now()
	entry, err := r.loadPair(paths)
	if err != nil {
		modelLoads.WithLabelValues(string(dt), "error").Inc()
		r.log.Error("model load failed",
			zap.String("dataset_type", string(dt)),
			zap.Error(err))
		return nil, err
	}

	r.mu.Lock()
	r.entries[dt] = entry
	r.mu.Unlock()

	modelLoads.WithLabelValues(string(dt), "success").Inc()
	r.log.Info("model loaded",
		zap.String("dataset_type", string(dt)),
		zap.String("model", paths.Model),
		zap.String("preprocessor", paths.Preprocessor),
		zap.Duration("elapsed", time.Since(start)))

	return entry, nil
}

func (r *Registry) loadFromDisk(paths Paths) (*repository.ModelEntry, error) {
	classifier, err := LoadClassifier(paths.Model)
	if err != nil {
		return nil, err
	}

	preprocessor, err := LoadPreprocessor(paths.Preprocessor)
	if err != nil {
		return nil, err
	}

	if got, want := classifier.NumFeatures(), len(preprocessor.FeatureNames()); got != want {
		return nil, fmt.Errorf("%w: classifier %s expects %d features, preprocessor %s provides %d",
			repository.ErrArtifactLoad, paths.Model, got, paths.Preprocessor, want)
	}

	return &repository.ModelEntry{
		Classifier:   classifier,
		Preprocessor: preprocessor,
		LoadedAt:     time.Now(),
	}, nil
}

func (r *Registry) available() []string {
	types := r.DatasetTypes()
	out := make([]string, len(types))
	for i, dt := range types {
		out[i] = string(dt)
	}
	return out
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
