package curp

import "testing"

func TestIsValid_AcceptsWellFormedCURP(t *testing.T) {
	valid := []string{
		"ABCD123456HDFXYZ01",
		"GAMJ850101MDFRRS09",
		"abcd123456hdfxyz01", // case-insensitive
		"  ABCD123456MDFXYZA1  ",
	}
	for _, s := range valid {
		if !IsValid(s) {
			t.Errorf("IsValid(%q) = false; want true", s)
		}
	}
}

func TestIsValid_RejectsMalformedCURP(t *testing.T) {
	invalid := []string{
		"",
		"ABCD123456HDFXYZ0",   // 17 chars
		"ABCD123456HDFXYZ012", // 19 chars
		"ABCD123456XDFXYZ01",  // invalid sex marker
		"AB1D123456HDFXYZ01",  // digit in name block
		"ABCD12345AHDFXYZ01",  // letter in date block
		"ABCD123456HDF1YZ01",  // digit in consonant block
		"ABCD123456HDFXYZ!1",  // symbol in tail
		"ABCD 23456HDFXYZ01",  // embedded space
	}
	for _, s := range invalid {
		if IsValid(s) {
			t.Errorf("IsValid(%q) = true; want false", s)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  abcd123456hdfxyz01 "); got != "ABCD123456HDFXYZ01" {
		t.Fatalf("Normalize = %q", got)
	}
}

func TestNonEmptyTrimmed(t *testing.T) {
	cases := map[string]bool{
		"":       false,
		"   ":    false,
		"\t\n":   false,
		"x":      true,
		"  x  ":  true,
		" JUAN ": true,
	}
	for in, want := range cases {
		if got := NonEmptyTrimmed(in); got != want {
			t.Errorf("NonEmptyTrimmed(%q) = %v; want %v", in, got, want)
		}
	}
}
