package repository

import (
	"context"
	"errors"
	"time"

	"github.com/orbitml/exoserve/internal/domain/entity"
	"github.com/orbitml/exoserve/internal/domain/service"
)

// Sentinel errors for model registry operations. Use errors.Is() to check
// for specific error conditions.
var (
	// ErrUnknownDatasetType indicates the dataset type is absent from the
	// model configuration. A client error; the request will never succeed
	// without a different dataset_type.
	ErrUnknownDatasetType = errors.New("registry: unknown dataset type")

	// ErrArtifactLoad indicates a model or preprocessor artifact is missing,
	// unreadable, or corrupt. An infrastructure error; operator attention is
	// required since a bad artifact will not self-heal.
	ErrArtifactLoad = errors.New("registry: artifact load failed")
)

// ModelEntry is a loaded classifier/preprocessor pair. Entries are immutable
// once inserted into the registry cache; callers borrow read-only access and
// must never mutate or replace them.
type ModelEntry struct {
	Classifier   service.Classifier
	Preprocessor service.Preprocessor
	LoadedAt     time.Time
}

// ModelStatus describes artifact presence and cache state for one dataset
// type, independent of whether a load has been attempted.
type ModelStatus struct {
	ModelExists        bool `json:"model_exists"`
	PreprocessorExists bool `json:"preprocessor_exists"`
	Cached             bool `json:"cached"`
}

// ModelRegistry owns the process-local cache of loaded model artifacts.
type ModelRegistry interface {
	// GetOrLoad returns the cached entry for the dataset type, loading both
	// artifacts on first use. At most one load per dataset type is in flight
	// at a time; concurrent first callers share a single load. A canceled
	// context aborts the wait, not the load, which completes in the
	// background to warm the cache.
	GetOrLoad(ctx context.Context, dt entity.DatasetType) (*ModelEntry, error)

	// Describe reports artifact presence on disk and whether the entry is
	// cached. It never loads and never fails.
	Describe(dt entity.DatasetType) ModelStatus

	// DatasetTypes returns the configured dataset types in sorted order.
	DatasetTypes() []entity.DatasetType
}
