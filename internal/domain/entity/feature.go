package entity

import (
	"sort"
	"strings"
)

// DatasetType identifies which trained model/preprocessor pair serves a request.
type DatasetType string

const (
	DatasetKepler DatasetType = "kepler"
	DatasetK2     DatasetType = "k2"
	DatasetTESS   DatasetType = "tess"
)

// ParseDatasetType normalizes a client-supplied dataset type. Matching is
// case-insensitive; whether the result is a known type is decided by the
// model configuration, not here.
func ParseDatasetType(s string) DatasetType {
	return DatasetType(strings.ToLower(strings.TrimSpace(s)))
}

// FeatureRow holds one record's named feature values as decoded from JSON.
// A nil value is a missing measurement. Rows within one batch always share
// the same key set.
type FeatureRow map[string]any

// Names returns the row's feature names in sorted order.
func (r FeatureRow) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Without returns a copy of the row with every feature matching the
// predicate removed.
func (r FeatureRow) Without(drop func(name string) bool) FeatureRow {
	out := make(FeatureRow, len(r))
	for name, value := range r {
		if drop(name) {
			continue
		}
		out[name] = value
	}
	return out
}
