package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestAvailableTimeForMasterListDecodesSequenceWireShape round-trips the
// real "avaliable_sequences" shape (total_start_time at the sequence level,
// steps[] with service_id/master_id/master_name/start_time — no
// service_name, no date_time) and checks the master-substitution rule is
// applied per step.
func TestAvailableTimeForMasterListDecodesSequenceWireShape(t *testing.T) {
	future := time.Now().AddDate(1, 0, 0).Format("2006-01-02 15:04")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"success": true,
			"result": map[string]any{
				"avaliable_sequences": []map[string]any{
					{
						"sequence_id":      "seq-1",
						"total_start_time": future,
						"steps": []map[string]any{
							{
								"service_id":  "2950601",
								"master_id":   "999",
								"master_name": "Кто-то другой",
								"start_time":  future,
							},
							{
								"service_id":  "1-20347221",
								"master_id":   "55",
								"master_name": "Настоящий мастер",
								"start_time":  future,
							},
						},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := NewClient(srv.Client(), Config{BaseURL: srv.URL, Timeout: time.Second})

	out := client.AvailableTimeForMasterList(context.Background(), "sofia", "2026-08-01", []string{"2950601", "1-20347221"}, 30)
	if !out.Ok {
		t.Fatalf("expected ok result, got error: %+v", out.Err)
	}
	if len(out.Value) != 1 {
		t.Fatalf("len(sequences) = %d, want 1", len(out.Value))
	}

	seq := out.Value[0]
	if seq.SequenceID != "seq-1" {
		t.Errorf("SequenceID = %q, want %q", seq.SequenceID, "seq-1")
	}
	if len(seq.Services) != 2 {
		t.Fatalf("len(services) = %d, want 2", len(seq.Services))
	}

	substituted := seq.Services[0]
	if substituted.MasterID != "881127" || substituted.MasterName != "Термотерапия" {
		t.Errorf("substituted step = %+v, want masterSubstitutions[2950601]", substituted)
	}

	untouched := seq.Services[1]
	if untouched.MasterID != "55" || untouched.MasterName != "Настоящий мастер" {
		t.Errorf("untouched step = %+v, want the CRM's own master_id/master_name", untouched)
	}
}
