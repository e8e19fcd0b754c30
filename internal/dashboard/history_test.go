package dashboard

import (
	"testing"
	"time"

	"fundingboard/internal/poller"
)

func historyResult(id string, trigger poller.Trigger) poller.Result {
	return poller.Result{
		ID:       id,
		Trigger:  trigger,
		Started:  time.Unix(10, 0),
		Duration: 25 * time.Millisecond,
		Markets:  3,
	}
}

func TestHistoryStoreLimit(t *testing.T) {
	store := newHistoryStore(2)
	for i := 0; i < 5; i++ {
		store.record(historyResult(string(rune('a'+i)), poller.TriggerTicker))
	}

	snapshot := store.snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 records in snapshot, got %d", len(snapshot))
	}

	if snapshot[0].ID != "d" || snapshot[1].ID != "e" {
		t.Fatalf("unexpected records retained: %#v", snapshot)
	}
}

func TestHistoryStoreRecordsFields(t *testing.T) {
	store := newHistoryStore(10)
	result := historyResult("id-1", poller.TriggerManual)
	result.Err = "boom"
	store.record(result)

	snapshot := store.snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snapshot))
	}

	record := snapshot[0]
	if record.Trigger != "manual" || record.Markets != 3 || record.Error != "boom" {
		t.Fatalf("unexpected record data: %#v", record)
	}
	if record.DurationMs != 25 {
		t.Fatalf("unexpected duration: %v", record.DurationMs)
	}
}

func TestHistoryStoreIgnoresRecordsAfterClose(t *testing.T) {
	store := newHistoryStore(10)
	store.record(historyResult("kept", poller.TriggerStartup))

	store.close()
	store.record(historyResult("dropped", poller.TriggerStartup))

	snapshot := store.snapshot()
	if len(snapshot) != 1 || snapshot[0].ID != "kept" {
		t.Fatalf("store accepted records after close: %#v", snapshot)
	}
}
