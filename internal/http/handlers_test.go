package http

import "testing"

func TestClampLimit(t *testing.T) {
	cases := []struct {
		name string
		in   int
		want int
	}{
		{"zero forced to one", 0, 1},
		{"negative forced to one", -5, 1},
		{"one kept", 1, 1},
		{"default kept", 20, 20},
		{"cap kept", 100, 100},
		{"over cap clipped", 500, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampLimit(tc.in); got != tc.want {
				t.Fatalf("clampLimit(%d) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct {
		name  string
		total int64
		limit int
		want  int64
	}{
		{"empty", 0, 20, 0},
		{"partial page", 7, 20, 1},
		{"exact pages", 40, 20, 2},
		{"remainder adds page", 41, 20, 3},
		{"limit one", 3, 1, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := pageCount(tc.total, tc.limit); got != tc.want {
				t.Fatalf("pageCount(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
			}
		})
	}
}
