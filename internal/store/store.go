package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"battery-swap-sim/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("run not found")

// Run is the persisted record of one simulation run. The full result is kept
// as a JSON document; the indexed columns exist for listing and filtering.
type Run struct {
	ID           string `gorm:"primaryKey"`
	ScenarioName string
	Status       string
	DurationDays int
	TotalSwaps   int
	LostSwaps    int
	ResultJSON   string
	CreatedAt    time.Time
}

// Event is one persisted telemetry record.
type Event struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	RunID     string `gorm:"index"`
	SimTime   float64
	EventType string `gorm:"index"`
	EntityID  string
	MetaJSON  string
}

// RunSummary is the listing shape; it omits the result document.
type RunSummary struct {
	ID           string    `json:"id"`
	ScenarioName string    `json:"scenario_name"`
	Status       string    `json:"status"`
	DurationDays int       `json:"duration_days"`
	TotalSwaps   int       `json:"total_swaps"`
	LostSwaps    int       `json:"lost_swaps"`
	CreatedAt    time.Time `json:"created_at"`
}

// Stats summarizes the whole database.
type Stats struct {
	TotalRuns   int64 `json:"total_runs"`
	TotalEvents int64 `json:"total_events"`
}

// Store wraps the SQLite database holding runs and their event traces.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New opens (or creates) the database at path and migrates the schema.
func New(path string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Run{}, &Event{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("store_opened", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

// SaveResult persists a completed run.
func (s *Store) SaveResult(res *model.SimulationResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	run := Run{
		ID:           res.RunID,
		ScenarioName: res.ScenarioName,
		Status:       string(res.Status),
		DurationDays: res.DurationDays,
		TotalSwaps:   res.CityTotalSwaps,
		LostSwaps:    res.CityLostSwaps,
		ResultJSON:   string(raw),
		CreatedAt:    res.CompletedAt,
	}
	return s.db.Create(&run).Error
}

// SaveEvents persists a run's event trace in batches.
func (s *Store) SaveEvents(runID string, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]Event, 0, len(events))
	for _, e := range events {
		meta := ""
		if e.Meta != nil {
			raw, err := json.Marshal(e.Meta)
			if err != nil {
				return err
			}
			meta = string(raw)
		}
		rows = append(rows, Event{
			RunID:     runID,
			SimTime:   e.SimTime,
			EventType: string(e.Type),
			EntityID:  e.EntityID,
			MetaJSON:  meta,
		})
	}
	return s.db.CreateInBatches(rows, 500).Error
}

// GetRun loads one run's full result document.
func (s *Store) GetRun(id string) (*model.SimulationResult, error) {
	var run Run
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var res model.SimulationResult
	if err := json.Unmarshal([]byte(run.ResultJSON), &res); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &res, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var runs []Run
	if err := s.db.Order("created_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	out := make([]RunSummary, 0, len(runs))
	for _, r := range runs {
		out = append(out, RunSummary{
			ID:           r.ID,
			ScenarioName: r.ScenarioName,
			Status:       r.Status,
			DurationDays: r.DurationDays,
			TotalSwaps:   r.TotalSwaps,
			LostSwaps:    r.LostSwaps,
			CreatedAt:    r.CreatedAt,
		})
	}
	return out, nil
}

// ListEvents pages through a run's trace in sim-time order, optionally
// filtered by event type.
func (s *Store) ListEvents(runID, eventType string, limit, offset int) ([]Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	q := s.db.Where("run_id = ?", runID)
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	var rows []Event
	err := q.Order("sim_time asc, id asc").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, err
}

// Stats counts what the database holds.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.db.Model(&Run{}).Count(&st.TotalRuns).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&Event{}).Count(&st.TotalEvents).Error; err != nil {
		return st, err
	}
	return st, nil
}
