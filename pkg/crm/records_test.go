package crm

import "testing"

func TestParseRecordDateTriesLayoutsInOrder(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"2026-08-01 10:00", true},
		{"01.08.2026 10:00", true},
		{"01.08.26 10:00", true},
		{"not a date", false},
	}
	for _, tc := range cases {
		_, ok := parseRecordDate(tc.in)
		if ok != tc.want {
			t.Errorf("parseRecordDate(%q) ok = %v, want %v", tc.in, ok, tc.want)
		}
	}
}

func TestClientRecordsSortUnparseableDatesSortLast(t *testing.T) {
	records := []ClientRecord{
		{RecordID: "1", RecordDate: "garbage"},
		{RecordID: "2", RecordDate: "2026-08-02 10:00"},
		{RecordID: "3", RecordDate: "2026-08-01 10:00"},
	}

	sortClientRecordsByDate(records)

	order := []string{records[0].RecordID, records[1].RecordID, records[2].RecordID}
	want := []string{"3", "2", "1"}
	for i := range order {
		if order[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", order, want)
		}
	}
}
