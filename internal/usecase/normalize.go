package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/orbitml/exoserve/internal/domain/entity"
)

// normalizeData decodes the request "data" payload into an ordered row batch.
// Two shapes are accepted and detected structurally from the top-level JSON
// token: a mapping from feature name to equal-length value arrays
// (column-oriented), or an array of feature-name to scalar mappings
// (row-oriented). Either way the result has at least one row and every row
// carries the same key set.
func normalizeData(raw json.RawMessage) ([]entity.FeatureRow, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: missing 'data' field", ErrMalformedInput)
	}

	switch trimmed[0] {
	case '{':
		return normalizeColumns(raw)
	case '[':
		return normalizeRecords(raw)
	default:
		return nil, fmt.Errorf("%w: 'data' must be a mapping of feature columns or an array of feature records", ErrMalformedInput)
	}
}

func normalizeColumns(raw json.RawMessage) ([]entity.FeatureRow, error) {
	var columns map[string][]any
	if err := json.Unmarshal(raw, &columns); err != nil {
		return nil, fmt.Errorf("%w: column-oriented 'data' must map feature names to value arrays", ErrMalformedInput)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: 'data' has no feature columns", ErrMalformedInput)
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	n := len(columns[names[0]])
	for _, name := range names {
		if len(columns[name]) != n {
			return nil, fmt.Errorf("%w: column %q has %d values, column %q has %d",
				ErrMalformedInput, name, len(columns[name]), names[0], n)
		}
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrMalformedInput)
	}

	rows := make([]entity.FeatureRow, n)
	for i := range rows {
		row := make(entity.FeatureRow, len(names))
		for _, name := range names {
			row[name] = columns[name][i]
		}
		rows[i] = row
	}
	return rows, nil
}

func normalizeRecords(raw json.RawMessage) ([]entity.FeatureRow, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("%w: row-oriented 'data' must be an array of feature mappings", ErrMalformedInput)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrMalformedInput)
	}

	reference := entity.FeatureRow(records[0]).Names()
	rows := make([]entity.FeatureRow, len(records))
	for i, record := range records {
		row := entity.FeatureRow(record)
		if i > 0 && !equalNames(reference, row.Names()) {
			return nil, fmt.Errorf("%w: row %d has a different feature set than row 0", ErrMalformedInput, i)
		}
		rows[i] = row
	}
	return rows, nil
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
