package scoring

import (
	"time"

	"github.com/iho/custodyledger/internal/domain"
)

// StubClassifier returns a fixed label. It lets the pipeline run with a
// deterministic verdict in tests and local environments.
type StubClassifier struct {
	Label int
	Err   error
}

func (s *StubClassifier) Name() string { return "stub" }

func (s *StubClassifier) Fit(examples []domain.TrainingExample) error {
	if len(examples) == 0 {
		return ErrEmptyTrainingSet
	}
	return nil
}

func (s *StubClassifier) Classify(domain.FeatureVector) (int, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Label, nil
}

func (s *StubClassifier) Accuracy() float64 { return 0 }

func (s *StubClassifier) Snapshot(time.Time) (*domain.ModelSnapshot, error) {
	return nil, ErrNotFitted
}

func (s *StubClassifier) Restore(*domain.ModelSnapshot) error { return ErrNotFitted }
