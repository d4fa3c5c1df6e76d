package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeatureVector is the fixed-shape input to the scoring model.
type FeatureVector struct {
	SuccessfulTransactions int
	Balance                decimal.Decimal
}

// Values returns the vector as model inputs, in a stable order.
func (f FeatureVector) Values() []float64 {
	return []float64{float64(f.SuccessfulTransactions), f.Balance.InexactFloat64()}
}

// TrainingExample pairs features with a historical approve (1) / deny (0) label.
type TrainingExample struct {
	Features FeatureVector
	Label    int
}

// LabelFor maps an account's credit status to a training label.
func LabelFor(status CreditStatus) int {
	if status == CreditStatusApproved {
		return 1
	}
	return 0
}

// ModelState is the lifecycle state of the scoring model.
type ModelState string

const (
	ModelStateUntrained ModelState = "untrained"
	ModelStateTrained   ModelState = "trained"
)

// ModelStatus describes the scoring model for observability.
type ModelStatus struct {
	State      ModelState
	Usable     bool
	Examples   int
	Accuracy   float64
	TrainedAt  *time.Time
	WarmStart  bool
	Classifier string
}

// ModelSnapshot is a serialisable copy of fitted logistic parameters.
type ModelSnapshot struct {
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Means     []float64 `json:"means"`
	Scales    []float64 `json:"scales"`
	Examples  int       `json:"examples"`
	Accuracy  float64   `json:"accuracy"`
	TrainedAt time.Time `json:"trained_at"`
}
