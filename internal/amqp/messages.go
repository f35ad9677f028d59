package amqp

import (
	"encoding/json"
	"time"
)

// Event kinds published by the pipeline.
const (
	KindDayProcessed = "day_processed"
	KindMonthSaved   = "month_saved"
)

// RunEvent notifies downstream consumers (site generator, alerting) that the
// pipeline produced fresh data. It carries keys only; consumers read the
// documents from the store.
type RunEvent struct {
	Kind      string    `json:"kind"`
	MonthKey  string    `json:"monthKey,omitempty"`
	Date      string    `json:"date,omitempty"`
	Movies    int       `json:"movies"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMonthSavedEvent builds the event published after a month document is
// persisted.
func NewMonthSavedEvent(monthKey string, movies int) *RunEvent {
	return &RunEvent{
		Kind:      KindMonthSaved,
		MonthKey:  monthKey,
		Movies:    movies,
		Timestamp: time.Now(),
	}
}

// NewDayProcessedEvent builds the event published after a new day is merged.
func NewDayProcessedEvent(date string, movies int) *RunEvent {
	return &RunEvent{
		Kind:      KindDayProcessed,
		Date:      date,
		Movies:    movies,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *RunEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RunEventFromJSON creates an event from JSON bytes
func RunEventFromJSON(data []byte) (*RunEvent, error) {
	var e RunEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
