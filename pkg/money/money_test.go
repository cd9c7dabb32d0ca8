package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestRupiah(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "Rp 0"},
		{5000, "Rp 5.000"},
		{1250000, "Rp 1.250.000"},
		{-75000, "-Rp 75.000"},
	}
	for _, tc := range cases {
		if got := Rupiah(tc.in); got != tc.want {
			t.Errorf("Rupiah(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestGramsAndPercent(t *testing.T) {
	if got := Grams(decimal.RequireFromString("2.345")); got != "2,35 gr" {
		t.Errorf("Grams = %q", got)
	}
	if got := Percent(decimal.RequireFromString("92.5")); got != "92,5%" {
		t.Errorf("Percent = %q", got)
	}
}
