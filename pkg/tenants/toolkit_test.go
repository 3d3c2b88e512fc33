package tenants

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ai2b-pro/toolfleet/pkg/crm"
)

func TestObjectSchemaShape(t *testing.T) {
	schema := objectSchema(map[string]any{
		"query": stringProp("a query"),
	}, "query")

	if schema["type"] != "object" {
		t.Errorf("type = %v, want object", schema["type"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties is not a map: %v", schema["properties"])
	}
	if _, ok := props["query"]; !ok {
		t.Errorf("properties missing %q", "query")
	}
	required, ok := schema["required"].([]string)
	if !ok || len(required) != 1 || required[0] != "query" {
		t.Errorf("required = %v, want [query]", schema["required"])
	}
}

func TestStringArrayPropAddsEnumOnlyWhenAllowedGiven(t *testing.T) {
	withEnum := stringArrayProp("body parts", []string{"спина", "лицо"})
	items, ok := withEnum["items"].(map[string]any)
	if !ok {
		t.Fatalf("items is not a map: %v", withEnum["items"])
	}
	if _, ok := items["enum"]; !ok {
		t.Errorf("expected enum to be set when allowed values are given")
	}

	withoutEnum := stringArrayProp("body parts", nil)
	items, ok = withoutEnum["items"].(map[string]any)
	if !ok {
		t.Fatalf("items is not a map: %v", withoutEnum["items"])
	}
	if _, ok := items["enum"]; ok {
		t.Errorf("expected no enum when no allowed values are given")
	}
}

func TestFaqToolDescriptor(t *testing.T) {
	tool := faqTool(Deps{})
	if tool.Name != "faq" {
		t.Errorf("name = %q, want %q", tool.Name, "faq")
	}
	if tool.Handler == nil {
		t.Error("expected a non-nil handler")
	}
	if tool.InputSchema["type"] != "object" {
		t.Errorf("input schema type = %v, want object", tool.InputSchema["type"])
	}
}

// TestClientRecordsToolAggregatesAcrossAllConfiguredBranches grounds
// clientRecordsTool on class_client_records.py's MCPClientRecords: no
// per-call channel_id, every configured branch is queried, and results are
// combined as long as at least one branch answers successfully.
func TestClientRecordsToolAggregatesAcrossAllConfiguredBranches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ChannelID int `json:"channel_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)

		switch body.ChannelID {
		case 1:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"records": []map[string]any{
					{
						"success": true,
						"status":  "Ожидает...",
						"date":    "2026-08-01 10:00",
						"id":      "rec-1",
						"master_id": map[string]any{
							"id":   "m1",
							"name": "Мастер 1",
						},
						"product": map[string]any{"id": "p1", "name": "Услуга 1"},
					},
				},
			})
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
		}
	}))
	defer srv.Close()

	client := crm.NewClient(srv.Client(), crm.Config{BaseURL: srv.URL, Timeout: time.Second})
	tool := clientRecordsTool(Deps{CRM: client}, []int{1, 2})

	if tool.Name != "client_records" {
		t.Errorf("name = %q, want %q", tool.Name, "client_records")
	}
	if _, ok := tool.InputSchema["properties"].(map[string]any)["channel_id"]; ok {
		t.Errorf("expected no channel_id in input schema, records aggregates across all configured branches")
	}

	out, err := tool.Handler(context.Background(), []byte(`{"user_companychat":42}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshalling output: %v", err)
	}
	var got struct {
		Ok    bool `json:"Ok"`
		Value []struct {
			RecordID string `json:"record_id"`
		} `json:"Value"`
	}
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("unmarshalling output: %v", err)
	}
	if !got.Ok {
		t.Fatalf("expected ok=true since branch 1 succeeded")
	}
	if len(got.Value) != 1 || got.Value[0].RecordID != "rec-1" {
		t.Errorf("aggregated records = %+v, want one record from branch 1", got.Value)
	}
}

func TestRememberOfficeToolEchoesInput(t *testing.T) {
	tool := rememberOfficeTool()
	if tool.Name != "remember_office" {
		t.Errorf("name = %q, want %q", tool.Name, "remember_office")
	}
	out, err := tool.Handler(context.Background(), []byte(`{"office_id":"1","office_address":"ул. Ленина 1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshalling output: %v", err)
	}
	var got struct {
		Success       bool   `json:"success"`
		OfficeID      string `json:"office_id"`
		OfficeAddress string `json:"office_address"`
	}
	if err := json.Unmarshal(encoded, &got); err != nil {
		t.Fatalf("unmarshalling output: %v", err)
	}
	if !got.Success || got.OfficeID != "1" || got.OfficeAddress != "ул. Ленина 1" {
		t.Errorf("unexpected output: %#v", got)
	}
}
