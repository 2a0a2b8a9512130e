package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	cases := []struct {
		in   string
		def  int
		want int
	}{
		{"", 7, 7},
		{"42", 7, 42},
		{"-3", 7, -3},
		{"nope", 7, 7},
		{"4.5", 7, 7},
	}
	for _, tc := range cases {
		if got := AtoiDefault(tc.in, tc.def); got != tc.want {
			t.Fatalf("AtoiDefault(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}

func TestAtoi64Default(t *testing.T) {
	cases := []struct {
		in   string
		def  int64
		want int64
	}{
		{"", 9, 9},
		{"604800000", 9, 604800000}, // 7 days in ms
		{"-1", 9, -1},
		{"nope", 9, 9},
	}
	for _, tc := range cases {
		if got := Atoi64Default(tc.in, tc.def); got != tc.want {
			t.Fatalf("Atoi64Default(%q, %d) = %d; want %d", tc.in, tc.def, got, tc.want)
		}
	}
}
