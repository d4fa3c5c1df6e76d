// Package scoring holds the binary classifiers used by the credit pipeline.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iho/custodyledger/internal/domain"
)

// Default hyperparameters for batch gradient descent.
const (
	DefaultSteps        = 2000
	DefaultLearningRate = 0.005
	decisionThreshold   = 0.5
)

var (
	ErrEmptyTrainingSet = errors.New("training set is empty")
	ErrNotFitted        = errors.New("classifier is not fitted")
	ErrShapeMismatch    = errors.New("feature shape mismatch")
)

// LogisticRegression is a two-feature logistic classifier. Inputs are
// standardised with the training-set mean and scale before fitting, so raw
// balances and transaction counts can be mixed without tuning the step size.
type LogisticRegression struct {
	Steps        int
	LearningRate float64

	weights  []float64
	bias     float64
	means    []float64
	scales   []float64
	examples int
	accuracy float64
	fitted   bool
}

// NewLogisticRegression returns an unfitted classifier with default settings.
func NewLogisticRegression() *LogisticRegression {
	return &LogisticRegression{Steps: DefaultSteps, LearningRate: DefaultLearningRate}
}

// Name identifies the classifier in status output.
func (m *LogisticRegression) Name() string { return "logistic_regression" }

// Fit trains the model from scratch. Weights start at zero, so identical
// input always yields identical parameters.
func (m *LogisticRegression) Fit(examples []domain.TrainingExample) error {
	if len(examples) == 0 {
		return ErrEmptyTrainingSet
	}

	rows := make([][]float64, len(examples))
	labels := make([]float64, len(examples))
	for i, ex := range examples {
		rows[i] = ex.Features.Values()
		labels[i] = float64(ex.Label)
	}

	width := len(rows[0])
	m.means, m.scales = standardisation(rows, width)
	for i := range rows {
		rows[i] = m.scale(rows[i])
	}

	steps := m.Steps
	if steps <= 0 {
		steps = DefaultSteps
	}
	lr := m.LearningRate
	if lr <= 0 {
		lr = DefaultLearningRate
	}

	m.weights = make([]float64, width)
	m.bias = 0
	n := float64(len(rows))
	grad := make([]float64, width)

	for step := 0; step < steps; step++ {
		clear(grad)
		var gradBias float64
		for i, x := range rows {
			diff := sigmoid(m.linear(x)) - labels[i]
			for j := range x {
				grad[j] += diff * x[j]
			}
			gradBias += diff
		}
		for j := range m.weights {
			m.weights[j] -= lr * grad[j] / n
		}
		m.bias -= lr * gradBias / n
	}

	m.fitted = true
	m.examples = len(examples)

	correct := 0
	for i, x := range rows {
		if predictLabel(sigmoid(m.linear(x))) == int(labels[i]) {
			correct++
		}
	}
	m.accuracy = float64(correct) / n

	return nil
}

// Probability returns P(approve | features).
func (m *LogisticRegression) Probability(features domain.FeatureVector) (float64, error) {
	if !m.fitted {
		return 0, ErrNotFitted
	}
	x := features.Values()
	if len(x) != len(m.weights) {
		return 0, fmt.Errorf("%w: got %d, want %d", ErrShapeMismatch, len(x), len(m.weights))
	}
	return sigmoid(m.linear(m.scale(x))), nil
}

// Classify returns 1 for approve and 0 for deny.
func (m *LogisticRegression) Classify(features domain.FeatureVector) (int, error) {
	p, err := m.Probability(features)
	if err != nil {
		return 0, err
	}
	return predictLabel(p), nil
}

// Accuracy is the in-sample accuracy of the last fit.
func (m *LogisticRegression) Accuracy() float64 { return m.accuracy }

// Snapshot exports fitted parameters.
func (m *LogisticRegression) Snapshot(trainedAt time.Time) (*domain.ModelSnapshot, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	return &domain.ModelSnapshot{
		Weights:   append([]float64(nil), m.weights...),
		Bias:      m.bias,
		Means:     append([]float64(nil), m.means...),
		Scales:    append([]float64(nil), m.scales...),
		Examples:  m.examples,
		Accuracy:  m.accuracy,
		TrainedAt: trainedAt,
	}, nil
}

// Restore loads parameters from a snapshot without refitting.
func (m *LogisticRegression) Restore(s *domain.ModelSnapshot) error {
	if s == nil || len(s.Weights) == 0 {
		return ErrNotFitted
	}
	if len(s.Means) != len(s.Weights) || len(s.Scales) != len(s.Weights) {
		return fmt.Errorf("%w: snapshot has %d weights, %d means, %d scales",
			ErrShapeMismatch, len(s.Weights), len(s.Means), len(s.Scales))
	}
	m.weights = append([]float64(nil), s.Weights...)
	m.means = append([]float64(nil), s.Means...)
	m.scales = append([]float64(nil), s.Scales...)
	m.bias = s.Bias
	m.examples = s.Examples
	m.accuracy = s.Accuracy
	m.fitted = true
	return nil
}

func (m *LogisticRegression) linear(x []float64) float64 {
	z := m.bias
	for j, w := range m.weights {
		z += w * x[j]
	}
	return z
}

func (m *LogisticRegression) scale(x []float64) []float64 {
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j] - m.means[j]) / m.scales[j]
	}
	return out
}

func standardisation(rows [][]float64, width int) ([]float64, []float64) {
	means := make([]float64, width)
	scales := make([]float64, width)
	n := float64(len(rows))

	for _, r := range rows {
		for j := 0; j < width; j++ {
			means[j] += r[j]
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, r := range rows {
		for j := 0; j < width; j++ {
			d := r[j] - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		// constant column
		if scales[j] == 0 {
			scales[j] = 1
		}
	}
	return means, scales
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func predictLabel(p float64) int {
	if p > decisionThreshold {
		return 1
	}
	return 0
}
