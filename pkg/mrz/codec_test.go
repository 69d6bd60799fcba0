package mrz_test

import (
	"testing"

	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		kind   mrz.FieldKind
		want   string
		wantOK bool
	}{
		{"alpha country", "UTO", mrz.KindAlpha, "UTO", true},
		{"alpha padded country", "D<<", mrz.KindAlpha, "D", true},
		{"alpha with digit", "UT0", mrz.KindAlpha, "UT0", false},
		{"alphanumeric number", "L898902C3", mrz.KindAlphanumeric, "L898902C3", true},
		{"alphanumeric padded", "ZE184226B<<<<<", mrz.KindAlphanumeric, "ZE184226B", true},
		{"alphanumeric lowercase", "ze184226b", mrz.KindAlphanumeric, "ze184226b", false},
		{"numeric", "6", mrz.KindNumeric, "6", true},
		{"numeric trailing pad", "12<<", mrz.KindNumeric, "12", true},
		{"numeric inner filler", "1<2", mrz.KindNumeric, "1<2", false},
		{"numeric letter", "O", mrz.KindNumeric, "O", false},
		{"date", "690806", mrz.KindDate, "690806", true},
		{"date with letter", "69O806", mrz.KindDate, "69O806", false},
		{"date month 13", "691306", mrz.KindDate, "691306", false},
		{"date day 0", "690800", mrz.KindDate, "690800", false},
		{"sex female", "F", mrz.KindSex, "F", true},
		{"sex unspecified", "<", mrz.KindSex, "<", true},
		{"sex x is unspecified", "X", mrz.KindSex, "X", true},
		{"sex unknown", "Q", mrz.KindSex, "Q", false},
		{"filler", "<<<<", mrz.KindFiller, "", true},
		{"filler broken", "<<A<", mrz.KindFiller, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mrz.Decode(tt.raw, tt.kind)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Decode(%q, %s) = (%q, %v), want (%q, %v)", tt.raw, tt.kind, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		raw         string
		wantSurname string
		wantGiven   string
	}{
		{"ERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<", "ERIKSSON", "ANNA MARIA"},
		{"VAN<DER<BERG<<JAN<<<<<<", "VAN DER BERG", "JAN"},
		{"MUSTERMANN<<<<<<<<<", "MUSTERMANN", ""},
		{"SINGLENAME", "SINGLENAME", ""},
		{"<<<<<<<<", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			surname, given := mrz.SplitNames(tt.raw)
			if surname != tt.wantSurname || given != tt.wantGiven {
				t.Errorf("SplitNames(%q) = (%q, %q), want (%q, %q)", tt.raw, surname, given, tt.wantSurname, tt.wantGiven)
			}
		})
	}
}

func TestIsFiller(t *testing.T) {
	if !mrz.IsFiller('<') {
		t.Error("IsFiller('<') = false")
	}
	if mrz.IsFiller(' ') {
		t.Error("IsFiller(' ') = true")
	}
}
