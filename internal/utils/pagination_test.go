package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		s    string
		def  int
		want int
	}{
		{"", 10, 10},
		{"42", 0, 42},
		{"-13", 1, -13},
		{"0012", 99, 12},
		{"x", 5, 5},
		{" 42", 7, 7}, // no trimming
		{"999999999999999999999999", -1, -1},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.s, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.s, tc.def, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := map[int]int{-3: 1, 0: 1, 1: 1, 7: 7}
	for in, want := range cases {
		if got := ClampPage(in); got != want {
			t.Fatalf("ClampPage(%d) = %d; want %d", in, got, want)
		}
	}
}

func TestClampLimit(t *testing.T) {
	cases := map[int]int{
		-1:  DefaultPageSize,
		0:   DefaultPageSize,
		1:   1,
		10:  10,
		100: 100,
		500: MaxPageSize,
	}
	for in, want := range cases {
		if got := ClampLimit(in); got != want {
			t.Fatalf("ClampLimit(%d) = %d; want %d", in, got, want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{25, 0, 0}, // degenerate limit
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.limit); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) = %d; want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
