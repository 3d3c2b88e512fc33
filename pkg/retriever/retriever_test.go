package retriever

import "testing"

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		name     string
		min, max any
		want     string
	}{
		{"equal bounds", 1500.0, 1500.0, "1500 руб."},
		{"range", 1000.0, 2000.0, "1000 - 2000 руб."},
		{"min only", 800.0, nil, "от 800 руб."},
		{"max only", nil, 2500.0, "до 2500 руб."},
		{"neither", nil, nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatPrice(tc.min, tc.max); got != tc.want {
				t.Errorf("formatPrice(%v, %v) = %q, want %q", tc.min, tc.max, got, tc.want)
			}
		})
	}
}

func TestBuildFilterOmitsEmptyFields(t *testing.T) {
	if got := buildFilter(Filters{}); got != nil {
		t.Errorf("buildFilter(zero value) = %+v, want nil", got)
	}

	f := buildFilter(Filters{IndicationsKey: []string{"boli-v-spine"}})
	if f == nil || len(f.Must) != 1 {
		t.Fatalf("buildFilter with one key = %+v, want exactly one condition", f)
	}
	if f.Must[0].Key != "indications_key" {
		t.Errorf("condition key = %q, want indications_key", f.Must[0].Key)
	}
}

func TestBuildFilterCombinesAllThreeKeys(t *testing.T) {
	f := buildFilter(Filters{
		IndicationsKey:       []string{"a"},
		ContraindicationsKey: []string{"b"},
		BodyParts:            []string{"c"},
	})
	if f == nil || len(f.Must) != 3 {
		t.Fatalf("buildFilter with all three keys = %+v, want 3 conditions", f)
	}
}
