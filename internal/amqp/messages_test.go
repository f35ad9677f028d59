package amqp

import (
	"testing"
)

func TestRunEventJSONRoundTrip(t *testing.T) {
	event := NewMonthSavedEvent("2025-09", 42)

	data, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	back, err := RunEventFromJSON(data)
	if err != nil {
		t.Fatalf("RunEventFromJSON: %v", err)
	}
	if back.Kind != KindMonthSaved || back.MonthKey != "2025-09" || back.Movies != 42 {
		t.Errorf("round trip = %+v", back)
	}
	if !back.Timestamp.Equal(event.Timestamp) {
		t.Errorf("timestamp = %v, want %v", back.Timestamp, event.Timestamp)
	}
}

func TestNewDayProcessedEvent(t *testing.T) {
	event := NewDayProcessedEvent("2025-09-15", 7)
	if event.Kind != KindDayProcessed {
		t.Errorf("Kind = %q", event.Kind)
	}
	if event.Date != "2025-09-15" || event.MonthKey != "" {
		t.Errorf("event = %+v", event)
	}
}

func TestRunEventFromJSONInvalid(t *testing.T) {
	if _, err := RunEventFromJSON([]byte("{broken")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
