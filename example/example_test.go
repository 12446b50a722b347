package example

import "testing"

func TestAddOne(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{1, 2},
		{0, 1},
		{-1, 0},
		{41, 42},
	}
	for _, tc := range cases {
		if got := AddOne(tc.in); got != tc.want {
			t.Errorf("AddOne(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
