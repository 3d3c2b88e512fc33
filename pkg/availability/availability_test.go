package availability

import "testing"

func TestParseProductID(t *testing.T) {
	cases := []struct {
		in          string
		wantChannel int
		wantArticle string
		wantErr     bool
	}{
		{"1-232324", 1, "232324", false},
		{"19-987654", 19, "987654", false},
		{"no-dash-missing", 0, "", true},
		{"1-2-3", 0, "", true},
		{"-232324", 0, "", true},
		{"1-", 0, "", true},
		{"abc-232324", 0, "", true},
	}
	for _, tc := range cases {
		ch, art, err := parseProductID(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseProductID(%q) expected error, got nil", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseProductID(%q) unexpected error: %v", tc.in, err)
			continue
		}
		if ch != tc.wantChannel || art != tc.wantArticle {
			t.Errorf("parseProductID(%q) = (%d, %q), want (%d, %q)", tc.in, ch, art, tc.wantChannel, tc.wantArticle)
		}
	}
}

func TestOtherBranchesPreservesOrderDedupesAndExcludesOffice(t *testing.T) {
	got := otherBranches([]int{1, 19, 19, 42, 1}, 1)
	want := []int{19, 42}
	if len(got) != len(want) {
		t.Fatalf("otherBranches = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("otherBranches = %v, want %v", got, want)
		}
	}
}

func TestAvailabilityMessage(t *testing.T) {
	if msg := availabilityMessage(nil); msg == "" {
		t.Error("expected a non-empty message for an empty slot list")
	}
}
