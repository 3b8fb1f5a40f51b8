package entity

// Label is the binary classification outcome for one transit candidate.
type Label string

const (
	LabelFalsePositive Label = "FALSE POSITIVE"
	LabelConfirmed     Label = "CONFIRMED"
)

// Probability pair indices. The order is fixed for every dataset type:
// index 0 carries the false-positive probability, index 1 the confirmed
// probability.
const (
	ProbFalsePositive = 0
	ProbConfirmed     = 1
)

// ConfirmedThreshold is the decision boundary applied to the confirmed
// probability when deriving a label.
const ConfirmedThreshold = 0.5

// PredictionResult is the classification outcome for a single row.
type PredictionResult struct {
	Label         Label      `json:"label"`
	Probabilities [2]float64 `json:"probabilities"`
}

// NewPredictionResult builds a result from the confirmed-class probability.
func NewPredictionResult(confirmed float64) PredictionResult {
	label := LabelFalsePositive
	if confirmed >= ConfirmedThreshold {
		label = LabelConfirmed
	}
	return PredictionResult{
		Label:         label,
		Probabilities: [2]float64{1 - confirmed, confirmed},
	}
}
