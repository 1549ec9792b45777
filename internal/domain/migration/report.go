package migration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntityType identifies which catalog entity a run is migrating
type EntityType string

const (
	// EntityCategory migrates the category hierarchy
	EntityCategory EntityType = "category"
	// EntityProduct migrates products with their options and variants
	EntityProduct EntityType = "product"
	// EntityCustomer migrates customer accounts
	EntityCustomer EntityType = "customer"
)

// IsValid returns true if the entity type is valid
func (t EntityType) IsValid() bool {
	switch t {
	case EntityCategory, EntityProduct, EntityCustomer:
		return true
	}
	return false
}

// String returns the string representation of EntityType
func (t EntityType) String() string { return string(t) }

// ItemState is the per-item outcome within a run
type ItemState string

const (
	// ItemStatePending means the item has not been attempted yet
	ItemStatePending ItemState = "pending"
	// ItemStateCreated means the item was created on the destination
	ItemStateCreated ItemState = "created"
	// ItemStateSkipped means the item already existed (idempotency) or was excluded up front
	ItemStateSkipped ItemState = "skipped"
	// ItemStateFailed means the item could not be migrated
	ItemStateFailed ItemState = "failed"
)

// Warning is a non-fatal note about a lossy or degraded mapping decision
type Warning struct {
	Entity   EntityType `json:"entity"`
	SourceID int64      `json:"source_id,omitempty"`
	Message  string     `json:"message"`
}

func (w Warning) String() string {
	if w.SourceID != 0 {
		return fmt.Sprintf("%s %d: %s", w.Entity, w.SourceID, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Entity, w.Message)
}

// Warnf builds a Warning with a formatted message
func Warnf(entity EntityType, sourceID int64, format string, args ...any) Warning {
	return Warning{Entity: entity, SourceID: sourceID, Message: fmt.Sprintf(format, args...)}
}

// Failure records one item that could not be migrated
type Failure struct {
	SourceID int64  `json:"source_id"`
	Name     string `json:"name,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message"`
}

// Stats holds the running tally for one entity migration
type Stats struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Processed returns how many items have reached a terminal state
func (s Stats) Processed() int {
	return s.Succeeded + s.Skipped + s.Failed
}

// Report is the full outcome of one entity migration. A run always produces
// a complete report, even when every item failed.
type Report struct {
	RunID       uuid.UUID  `json:"run_id"`
	Entity      EntityType `json:"entity"`
	Stats       Stats      `json:"stats"`
	Warnings    []Warning  `json:"warnings,omitempty"`
	Failures    []Failure  `json:"failures,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
}

// NewReport starts a report for one entity migration
func NewReport(entity EntityType) *Report {
	return &Report{
		RunID:     uuid.New(),
		Entity:    entity,
		Warnings:  make([]Warning, 0),
		Failures:  make([]Failure, 0),
		StartedAt: time.Now(),
	}
}

// AddWarning appends a warning to the report
func (r *Report) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// AddWarnings appends a batch of warnings to the report
func (r *Report) AddWarnings(ws []Warning) {
	r.Warnings = append(r.Warnings, ws...)
}

// RecordCreated tallies a successfully created item
func (r *Report) RecordCreated() { r.Stats.Succeeded++ }

// RecordSkipped tallies an idempotency skip or up-front exclusion
func (r *Report) RecordSkipped() { r.Stats.Skipped++ }

// RecordFailed tallies a failed item with its error
func (r *Report) RecordFailed(sourceID int64, name string, err error) {
	r.Stats.Failed++
	r.Failures = append(r.Failures, Failure{
		SourceID: sourceID,
		Name:     name,
		Code:     ErrorCode(err),
		Message:  err.Error(),
	})
}

// Complete marks the report finished
func (r *Report) Complete() {
	r.CompletedAt = time.Now()
}

// Progress is a point-in-time snapshot sent to the progress sink
type Progress struct {
	Entity    EntityType `json:"entity"`
	Stats     Stats      `json:"stats"`
	Current   string     `json:"current,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

// ProgressSink receives progress snapshots and final reports. Implementations
// belong to the surrounding display layer; the engine only calls them.
type ProgressSink interface {
	// OnProgress is called after each item reaches a terminal state
	OnProgress(p Progress)
	// OnReport is called once per entity when its migration finishes
	OnReport(r *Report)
}

// NopSink discards all progress notifications
type NopSink struct{}

// OnProgress implements ProgressSink
func (NopSink) OnProgress(Progress) {}

// OnReport implements ProgressSink
func (NopSink) OnReport(*Report) {}
