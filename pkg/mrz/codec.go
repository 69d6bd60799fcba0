// Package mrz decodes and validates ICAO 9303 Machine Readable Zone text.
//
// The package works on text lines only. Image capture and OCR happen
// elsewhere; callers hand over the lines an OCR engine (or a person) produced
// and get back a Record with per-field check digit results and a confidence
// score. Every function in this package is pure and safe for concurrent use.
package mrz

import "strings"

// Filler pads unused positions and separates name components.
const Filler = '<'

// NotAvailable is the display value used when a field carries no data.
const NotAvailable = "N/A"

// FieldKind describes the character class a field is expected to hold.
type FieldKind int

const (
	KindAlpha FieldKind = iota
	KindNumeric
	KindAlphanumeric
	KindDate
	KindSex
	KindFiller
)

func (k FieldKind) String() string {
	switch k {
	case KindAlpha:
		return "alpha"
	case KindNumeric:
		return "numeric"
	case KindAlphanumeric:
		return "alphanumeric"
	case KindDate:
		return "date"
	case KindSex:
		return "sex"
	case KindFiller:
		return "filler"
	default:
		return "unknown"
	}
}

// IsFiller reports whether c is the MRZ filler character.
func IsFiller(c byte) bool {
	return c == Filler
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'A' && c <= 'Z'
}

// Decode converts a raw fixed-width span into its value.
// The returned flag is false when the span breaks the structural rules of its
// kind; the best-effort value is still returned so partial data survives.
// KindSex accepts X (unspecified) as well as M, F and the filler, following
// current ICAO 9303 issuance.
func Decode(raw string, kind FieldKind) (string, bool) {
	switch kind {
	case KindAlpha:
		return collapseFillers(raw), all(raw, func(c byte) bool { return isLetter(c) || IsFiller(c) })

	case KindAlphanumeric:
		ok := all(raw, func(c byte) bool { return isLetter(c) || isDigit(c) || IsFiller(c) })
		return trimFillers(raw), ok

	case KindNumeric:
		return trimFillers(raw), isPaddedNumber(raw)

	case KindDate:
		return raw, isDate(raw)

	case KindSex:
		switch raw {
		case "M", "F", "X", string(Filler):
			return raw, true
		}
		return raw, false

	case KindFiller:
		return "", all(raw, IsFiller)
	}
	return raw, false
}

// SplitNames separates the primary identifier (surname) from the secondary
// identifier (given names) at the first double filler. Filler runs inside
// either part become single spaces.
func SplitNames(raw string) (surname, given string) {
	idx := strings.Index(raw, "<<")
	if idx < 0 {
		return collapseFillers(raw), ""
	}
	return collapseFillers(raw[:idx]), collapseFillers(raw[idx+2:])
}

// collapseFillers turns every filler run into one space and trims the ends.
func collapseFillers(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, string(Filler), " ")), " ")
}

func trimFillers(s string) string {
	return strings.TrimRight(s, string(Filler))
}

// isPaddedNumber accepts digits followed only by trailing fillers.
func isPaddedNumber(s string) bool {
	padding := false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case IsFiller(c):
			padding = true
		case isDigit(c) && !padding:
		default:
			return false
		}
	}
	return true
}

func isDate(s string) bool {
	if len(s) != 6 || !all(s, isDigit) {
		return false
	}
	month := int(s[2]-'0')*10 + int(s[3]-'0')
	day := int(s[4]-'0')*10 + int(s[5]-'0')
	return month >= 1 && month <= 12 && day >= 1 && day <= 31
}

func all(s string, pred func(byte) bool) bool {
	for i := 0; i < len(s); i++ {
		if !pred(s[i]) {
			return false
		}
	}
	return true
}
