package artifact

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Run statuses.
const (
	RunStatusRunning = "running"
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// Run is one pipeline execution.
type Run struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    string `gorm:"index"`
	Cause     string // failure cause, empty on success

	ReviewCount  int
	ClusterCount int
	PersonaCount int
	FeatureCount int
	TurnCount    int
}

// Artifact records where a run's output landed.
type Artifact struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"index"`
	Name      string
	Location  string
	CreatedAt time.Time
}

// Store persists runs and their artifacts.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// OpenSQLite opens (or creates) the run database at path. Use ":memory:"
// for tests.
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open run store: %w", err)
	}
	return db, nil
}

// NewStore migrates the schema and wraps the connection.
func NewStore(db *gorm.DB, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&Run{}, &Artifact{}); err != nil {
		return nil, fmt.Errorf("migrate run store: %w", err)
	}
	return &Store{db: db, logger: logger.With(zap.String("component", "run_store"))}, nil
}

// CreateRun starts a new run record.
func (s *Store) CreateRun() (*Run, error) {
	run := &Run{ID: uuid.NewString(), Status: RunStatusRunning}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	s.logger.Info("run created", zap.String("run_id", run.ID))
	return run, nil
}

// FinishRun records the outcome and final counts of a run.
func (s *Store) FinishRun(run *Run, status, cause string) error {
	run.Status = status
	run.Cause = cause
	if err := s.db.Save(run).Error; err != nil {
		return fmt.Errorf("finish run %s: %w", run.ID, err)
	}
	return nil
}

// RecordArtifact links an artifact location to a run.
func (s *Store) RecordArtifact(runID, name, location string) error {
	a := &Artifact{RunID: runID, Name: name, Location: location}
	if err := s.db.Create(a).Error; err != nil {
		return fmt.Errorf("record artifact %s: %w", name, err)
	}
	return nil
}

// GetRun fetches a run with its artifacts.
func (s *Store) GetRun(id string) (*Run, []Artifact, error) {
	var run Run
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, nil, fmt.Errorf("get run %s: %w", id, err)
	}
	var artifacts []Artifact
	if err := s.db.Where("run_id = ?", id).Order("id").Find(&artifacts).Error; err != nil {
		return nil, nil, fmt.Errorf("list artifacts for run %s: %w", id, err)
	}
	return &run, artifacts, nil
}
