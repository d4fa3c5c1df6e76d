package scoring

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/custodyledger/internal/domain"
)

func example(count int, balance int64, label int) domain.TrainingExample {
	return domain.TrainingExample{
		Features: domain.FeatureVector{SuccessfulTransactions: count, Balance: decimal.NewFromInt(balance)},
		Label:    label,
	}
}

// separable: approved borrowers have many transactions and large balances
func separableSet() []domain.TrainingExample {
	return []domain.TrainingExample{
		example(0, 10, 0),
		example(1, 50, 0),
		example(2, 80, 0),
		example(1, 120, 0),
		example(12, 9000, 1),
		example(15, 12000, 1),
		example(20, 15000, 1),
		example(18, 11000, 1),
	}
}

func TestLogisticRegression_FitSeparable(t *testing.T) {
	m := NewLogisticRegression()
	require.NoError(t, m.Fit(separableSet()))

	high, err := m.Classify(domain.FeatureVector{SuccessfulTransactions: 25, Balance: decimal.NewFromInt(20000)})
	require.NoError(t, err)
	assert.Equal(t, 1, high)

	low, err := m.Classify(domain.FeatureVector{SuccessfulTransactions: 0, Balance: decimal.Zero})
	require.NoError(t, err)
	assert.Equal(t, 0, low)

	assert.InDelta(t, 1.0, m.Accuracy(), 1e-9)
}

func TestLogisticRegression_Deterministic(t *testing.T) {
	a := NewLogisticRegression()
	b := NewLogisticRegression()
	require.NoError(t, a.Fit(separableSet()))
	require.NoError(t, b.Fit(separableSet()))

	probe := domain.FeatureVector{SuccessfulTransactions: 7, Balance: decimal.NewFromInt(3000)}
	pa, err := a.Probability(probe)
	require.NoError(t, err)
	pb, err := b.Probability(probe)
	require.NoError(t, err)

	assert.Equal(t, pa, pb)
}

func TestLogisticRegression_SingleClass(t *testing.T) {
	m := NewLogisticRegression()
	require.NoError(t, m.Fit([]domain.TrainingExample{example(3, 100, 0), example(3, 100, 0)}))

	label, err := m.Classify(domain.FeatureVector{SuccessfulTransactions: 3, Balance: decimal.NewFromInt(100)})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}

func TestLogisticRegression_Errors(t *testing.T) {
	m := NewLogisticRegression()

	assert.True(t, errors.Is(m.Fit(nil), ErrEmptyTrainingSet))

	_, err := m.Classify(domain.FeatureVector{})
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = m.Snapshot(time.Now())
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestLogisticRegression_SnapshotRestore(t *testing.T) {
	trained := NewLogisticRegression()
	require.NoError(t, trained.Fit(separableSet()))

	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	snap, err := trained.Snapshot(at)
	require.NoError(t, err)
	assert.Equal(t, 8, snap.Examples)
	assert.Equal(t, at, snap.TrainedAt)

	restored := NewLogisticRegression()
	require.NoError(t, restored.Restore(snap))

	probe := domain.FeatureVector{SuccessfulTransactions: 5, Balance: decimal.NewFromInt(900)}
	want, _ := trained.Probability(probe)
	got, err := restored.Probability(probe)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	bad := *snap
	bad.Means = bad.Means[:1]
	assert.ErrorIs(t, NewLogisticRegression().Restore(&bad), ErrShapeMismatch)
}

func TestStubClassifier(t *testing.T) {
	s := &StubClassifier{Label: 1}
	label, err := s.Classify(domain.FeatureVector{})
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	boom := errors.New("boom")
	s.Err = boom
	_, err = s.Classify(domain.FeatureVector{})
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, s.Fit(nil), ErrEmptyTrainingSet)
}
