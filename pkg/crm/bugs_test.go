package crm

import "testing"

func TestIsBooking400Bug(t *testing.T) {
	cases := []struct {
		name string
		resp bookingResponse
		want bool
	}{
		{
			name: "matches the documented bug",
			resp: bookingResponse{Success: false, Error: bookingBugErrorText},
			want: true,
		},
		{
			name: "genuine success is not the bug",
			resp: bookingResponse{Success: true},
			want: false,
		},
		{
			name: "a different business failure is not the bug",
			resp: bookingResponse{Success: false, Error: "Мастер занят"},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isBooking400Bug(tc.resp); got != tc.want {
				t.Errorf("isBooking400Bug(%+v) = %v, want %v", tc.resp, got, tc.want)
			}
		})
	}
}
