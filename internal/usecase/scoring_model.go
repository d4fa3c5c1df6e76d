package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/custodyledger/internal/domain"
)

// TrainingSource supplies labelled examples.
type TrainingSource interface {
	TrainingSet(ctx context.Context) ([]domain.TrainingExample, error)
}

// ScoringModel owns the credit classifier and its lifecycle. It is safe for
// concurrent use: predictions share a read lock and a refit swaps the
// classifier in one step.
type ScoringModel struct {
	source      TrainingSource
	newTrainer  func() Trainer
	snapshots   ModelSnapshotStore
	snapshotTTL time.Duration
	metrics     MetricsRecorder
	logger      zerolog.Logger

	group singleflight.Group

	mu         sync.RWMutex
	state      domain.ModelState
	classifier Trainer
	examples   int
	accuracy   float64
	trainedAt  *time.Time
	warm       bool
}

// NewScoringModel creates an untrained model. newTrainer builds a fresh,
// unfitted classifier for every training run.
func NewScoringModel(source TrainingSource, newTrainer func() Trainer, logger zerolog.Logger) *ScoringModel {
	return &ScoringModel{
		source:      source,
		newTrainer:  newTrainer,
		snapshotTTL: DefaultModelSnapshotTTL,
		metrics:     nopRecorder{},
		logger:      logger.With().Str("component", "scoring_model").Logger(),
		state:       domain.ModelStateUntrained,
	}
}

// WithSnapshots persists every fitted model to store.
func (m *ScoringModel) WithSnapshots(store ModelSnapshotStore, ttl time.Duration) *ScoringModel {
	m.snapshots = store
	if ttl > 0 {
		m.snapshotTTL = ttl
	}
	return m
}

// WithMetrics attaches a metrics recorder.
func (m *ScoringModel) WithMetrics(r MetricsRecorder) *ScoringModel {
	if r != nil {
		m.metrics = r
	}
	return m
}

// IsTrained reports whether a training run has completed.
func (m *ScoringModel) IsTrained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == domain.ModelStateTrained
}

// Train always refits from the current ledger state. An empty training set
// still completes the run, but leaves no classifier behind.
func (m *ScoringModel) Train(ctx context.Context) error {
	start := time.Now()

	examples, err := m.source.TrainingSet(ctx)
	if err != nil {
		return fmt.Errorf("build training set: %w", err)
	}

	now := time.Now().UTC()

	if len(examples) == 0 {
		m.logger.Warn().Msg("no labelled accounts, scoring model left without a classifier")
		m.install(nil, 0, 0, now, false)
		return nil
	}

	trainer := m.newTrainer()
	if err := trainer.Fit(examples); err != nil {
		return fmt.Errorf("fit %s: %w", trainer.Name(), err)
	}

	m.install(trainer, len(examples), trainer.Accuracy(), now, false)
	m.metrics.ObserveModelTraining(len(examples), trainer.Accuracy(), time.Since(start))

	m.logger.Info().
		Str("classifier", trainer.Name()).
		Int("examples", len(examples)).
		Float64("accuracy", trainer.Accuracy()).
		Dur("elapsed", time.Since(start)).
		Msg("scoring model trained")

	m.saveSnapshot(ctx, trainer, now)

	return nil
}

// EnsureTrained trains once per process. Concurrent callers share one run.
func (m *ScoringModel) EnsureTrained(ctx context.Context) error {
	if m.IsTrained() {
		return nil
	}

	_, err, _ := m.group.Do("train", func() (any, error) {
		if m.IsTrained() {
			return nil, nil
		}
		return nil, m.Train(ctx)
	})

	return err
}

// Predict classifies a borrower. It fails with domain.ErrModelNotTrained
// until a training run has produced a classifier.
func (m *ScoringModel) Predict(features domain.FeatureVector) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.state != domain.ModelStateTrained || m.classifier == nil {
		return 0, domain.ErrModelNotTrained
	}

	return m.classifier.Classify(features)
}

// Reset drops the classifier so the next EnsureTrained refits.
func (m *ScoringModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = domain.ModelStateUntrained
	m.classifier = nil
	m.examples = 0
	m.accuracy = 0
	m.trainedAt = nil
	m.warm = false
}

// Status describes the current model.
func (m *ScoringModel) Status() domain.ModelStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := domain.ModelStatus{
		State:     m.state,
		Usable:    m.state == domain.ModelStateTrained && m.classifier != nil,
		Examples:  m.examples,
		Accuracy:  m.accuracy,
		TrainedAt: m.trainedAt,
		WarmStart: m.warm,
	}
	if m.classifier != nil {
		status.Classifier = m.classifier.Name()
	}
	return status
}

// WarmStart restores the last saved snapshot, if any. It reports whether a
// classifier was installed.
func (m *ScoringModel) WarmStart(ctx context.Context) (bool, error) {
	if m.snapshots == nil {
		return false, nil
	}

	snapshot, err := m.snapshots.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("load model snapshot: %w", err)
	}
	if snapshot == nil {
		return false, nil
	}

	trainer := m.newTrainer()
	if err := trainer.Restore(snapshot); err != nil {
		return false, fmt.Errorf("restore model snapshot: %w", err)
	}

	m.install(trainer, snapshot.Examples, snapshot.Accuracy, snapshot.TrainedAt, true)

	m.logger.Info().
		Int("examples", snapshot.Examples).
		Time("trained_at", snapshot.TrainedAt).
		Msg("scoring model restored from snapshot")

	return true, nil
}

func (m *ScoringModel) install(classifier Trainer, examples int, accuracy float64, at time.Time, warm bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = domain.ModelStateTrained
	m.classifier = classifier
	m.examples = examples
	m.accuracy = accuracy
	m.trainedAt = &at
	m.warm = warm
}

func (m *ScoringModel) saveSnapshot(ctx context.Context, trainer Trainer, at time.Time) {
	if m.snapshots == nil {
		return
	}

	snapshot, err := trainer.Snapshot(at)
	if err != nil {
		m.logger.Debug().Err(err).Msg("classifier does not support snapshots")
		return
	}

	if err := m.snapshots.Save(ctx, snapshot, m.snapshotTTL); err != nil {
		m.logger.Error().Err(err).Msg("failed to save model snapshot")
	}
}
