package choicelog

import (
	"encoding/json"
	"log/slog"
	"testing"
)

func TestLog_DropsWhenFull(t *testing.T) {
	logger := slog.Default()
	w := NewWriter(nil, logger)
	// Don't start the background goroutine — nothing drains the channel.

	dropped := 0
	w.OnMetrics(nil, func() { dropped++ })

	for i := 0; i < bufferSize; i++ {
		w.Log(Entry{Tenant: "sofia", ToolName: "test"})
	}

	// The next entry must be dropped, not block.
	w.Log(Entry{Tenant: "sofia", ToolName: "dropped"})

	if len(w.entries) != bufferSize {
		t.Errorf("buffer size = %d, want %d", len(w.entries), bufferSize)
	}
	if dropped != 1 {
		t.Errorf("dropped count = %d, want 1", dropped)
	}
}

func TestLog_EnqueuesEntry(t *testing.T) {
	logger := slog.Default()
	w := NewWriter(nil, logger)

	args, _ := json.Marshal(map[string]string{"office_id": "1"})
	w.Log(Entry{Tenant: "sofia", SessionID: "sess-1", ToolName: "zena_available_time_for_master", Args: args, Outcome: "ok"})

	entry := <-w.entries
	if entry.Tenant != "sofia" {
		t.Errorf("Tenant = %q, want sofia", entry.Tenant)
	}
	if entry.ToolName != "zena_available_time_for_master" {
		t.Errorf("ToolName = %q, want zena_available_time_for_master", entry.ToolName)
	}
	if entry.Outcome != "ok" {
		t.Errorf("Outcome = %q, want ok", entry.Outcome)
	}
}
