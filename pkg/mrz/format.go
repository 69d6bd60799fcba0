package mrz

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoMRZ means the input lines do not have the geometry of any known MRZ
// format. Callers should treat it as "no MRZ found" and ask for a retry.
var ErrNoMRZ = errors.New("mrz: no machine readable zone detected")

// Type identifies an MRZ layout.
type Type int

const (
	TypeUnknown Type = iota
	TD1
	TD2
	TD3
	MRVA
	MRVB
)

func (t Type) String() string {
	switch t {
	case TD1:
		return "TD1"
	case TD2:
		return "TD2"
	case TD3:
		return "TD3"
	case MRVA:
		return "MRVA"
	case MRVB:
		return "MRVB"
	default:
		return "unknown"
	}
}

// ParseType is the inverse of Type.String.
func ParseType(s string) Type {
	switch strings.ToUpper(s) {
	case "TD1":
		return TD1
	case "TD2":
		return TD2
	case "TD3":
		return TD3
	case "MRVA":
		return MRVA
	case "MRVB":
		return MRVB
	default:
		return TypeUnknown
	}
}

// LineCount returns how many lines the layout has.
func (t Type) LineCount() int {
	if t == TD1 {
		return 3
	}
	return 2
}

// LineWidth returns the fixed width of every line of the layout.
func (t Type) LineWidth() int {
	switch t {
	case TD1:
		return 30
	case TD2, MRVB:
		return 36
	case TD3, MRVA:
		return 44
	default:
		return 0
	}
}

// Field names shared by the layout tables and the serialized document.
const (
	FieldDocumentType        = "type"
	FieldCountry             = "country"
	FieldNames               = "names"
	FieldNumber              = "number"
	FieldCheckNumber         = "check_number"
	FieldNationality         = "nationality"
	FieldDateOfBirth         = "date_of_birth"
	FieldCheckDateOfBirth    = "check_date_of_birth"
	FieldSex                 = "sex"
	FieldExpirationDate      = "expiration_date"
	FieldCheckExpirationDate = "check_expiration_date"
	FieldPersonalNumber      = "personal_number"
	FieldCheckPersonalNumber = "check_personal_number"
	FieldOptional1           = "optional1"
	FieldOptional2           = "optional2"
	FieldCheckComposite      = "check_composite"
)

// FieldSpec locates one field inside a set of MRZ lines.
type FieldSpec struct {
	Name   string
	Line   int
	Start  int
	Length int
	Kind   FieldKind
}

// End returns the exclusive end offset of the field.
func (f FieldSpec) End() int {
	return f.Start + f.Length
}

// Slice cuts the field out of lines that already match the layout.
func (f FieldSpec) Slice(lines []string) string {
	return lines[f.Line][f.Start:f.End()]
}

type span struct {
	line, start, end int
}

type layout struct {
	fields    []FieldSpec
	composite []span
}

// Row 2 of TD2/TD3/MRVA/MRVB shares the same leading fields.
func travelRow2(optional FieldSpec, trailing ...FieldSpec) []FieldSpec {
	fields := []FieldSpec{
		{FieldNumber, 1, 0, 9, KindAlphanumeric},
		{FieldCheckNumber, 1, 9, 1, KindNumeric},
		{FieldNationality, 1, 10, 3, KindAlpha},
		{FieldDateOfBirth, 1, 13, 6, KindDate},
		{FieldCheckDateOfBirth, 1, 19, 1, KindNumeric},
		{FieldSex, 1, 20, 1, KindSex},
		{FieldExpirationDate, 1, 21, 6, KindDate},
		{FieldCheckExpirationDate, 1, 27, 1, KindNumeric},
		optional,
	}
	return append(fields, trailing...)
}

func travelRow1(namesLength int) []FieldSpec {
	return []FieldSpec{
		{FieldDocumentType, 0, 0, 2, KindAlpha},
		{FieldCountry, 0, 2, 3, KindAlpha},
		{FieldNames, 0, 5, namesLength, KindAlpha},
	}
}

var layouts = map[Type]layout{
	TD1: {
		fields: []FieldSpec{
			{FieldDocumentType, 0, 0, 2, KindAlpha},
			{FieldCountry, 0, 2, 3, KindAlpha},
			{FieldNumber, 0, 5, 9, KindAlphanumeric},
			{FieldCheckNumber, 0, 14, 1, KindNumeric},
			{FieldOptional1, 0, 15, 15, KindAlphanumeric},
			{FieldDateOfBirth, 1, 0, 6, KindDate},
			{FieldCheckDateOfBirth, 1, 6, 1, KindNumeric},
			{FieldSex, 1, 7, 1, KindSex},
			{FieldExpirationDate, 1, 8, 6, KindDate},
			{FieldCheckExpirationDate, 1, 14, 1, KindNumeric},
			{FieldNationality, 1, 15, 3, KindAlpha},
			{FieldOptional2, 1, 18, 11, KindAlphanumeric},
			{FieldCheckComposite, 1, 29, 1, KindNumeric},
			{FieldNames, 2, 0, 30, KindAlpha},
		},
		composite: []span{{0, 5, 30}, {1, 0, 7}, {1, 8, 15}, {1, 18, 29}},
	},
	TD2: {
		fields: append(travelRow1(31), travelRow2(
			FieldSpec{FieldOptional1, 1, 28, 7, KindAlphanumeric},
			FieldSpec{FieldCheckComposite, 1, 35, 1, KindNumeric},
		)...),
		composite: []span{{1, 0, 10}, {1, 13, 20}, {1, 21, 35}},
	},
	TD3: {
		fields: append(travelRow1(39), travelRow2(
			FieldSpec{FieldPersonalNumber, 1, 28, 14, KindAlphanumeric},
			FieldSpec{FieldCheckPersonalNumber, 1, 42, 1, KindNumeric},
			FieldSpec{FieldCheckComposite, 1, 43, 1, KindNumeric},
		)...),
		composite: []span{{1, 0, 10}, {1, 13, 20}, {1, 21, 43}},
	},
	MRVA: {
		fields: append(travelRow1(39), travelRow2(
			FieldSpec{FieldOptional1, 1, 28, 16, KindAlphanumeric},
		)...),
	},
	MRVB: {
		fields: append(travelRow1(31), travelRow2(
			FieldSpec{FieldOptional1, 1, 28, 8, KindAlphanumeric},
		)...),
	},
}

// FieldsFor returns the field table of t in line order. The slice is a copy.
func FieldsFor(t Type) []FieldSpec {
	l, ok := layouts[t]
	if !ok {
		return nil
	}
	return append([]FieldSpec(nil), l.fields...)
}

// HasComposite reports whether the layout carries a composite check digit.
func (t Type) HasComposite() bool {
	return len(layouts[t].composite) > 0
}

// compositeValue concatenates the spans covered by the composite check digit.
func compositeValue(t Type, lines []string) string {
	var b strings.Builder
	for _, s := range layouts[t].composite {
		b.WriteString(lines[s.line][s.start:s.end])
	}
	return b.String()
}

// DetectType picks the layout matching the line count and widths.
// Surrounding whitespace is ignored and blank lines are dropped first.
// It never panics; any input it cannot classify yields an error wrapping
// ErrNoMRZ.
func DetectType(lines []string) (Type, error) {
	return detect(normalizeLines(lines))
}

func normalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

func detect(lines []string) (Type, error) {
	for i, l := range lines {
		for j := 0; j < len(l); j++ {
			if l[j] >= 0x80 {
				return TypeUnknown, fmt.Errorf("%w: non-ASCII input on line %d", ErrNoMRZ, i+1)
			}
		}
	}

	switch len(lines) {
	case 3:
		if sameWidth(lines, 30) {
			return TD1, nil
		}
	case 2:
		visa := lines[0][0] == 'V'
		switch {
		case sameWidth(lines, 44) && visa:
			return MRVA, nil
		case sameWidth(lines, 44):
			return TD3, nil
		case sameWidth(lines, 36) && visa:
			return MRVB, nil
		case sameWidth(lines, 36):
			return TD2, nil
		}
	default:
		return TypeUnknown, fmt.Errorf("%w: got %d lines, want 2 or 3", ErrNoMRZ, len(lines))
	}

	widths := make([]string, len(lines))
	for i, l := range lines {
		widths[i] = fmt.Sprint(len(l))
	}
	return TypeUnknown, fmt.Errorf("%w: %d lines of width %s match no layout", ErrNoMRZ, len(lines), strings.Join(widths, "/"))
}

func sameWidth(lines []string, width int) bool {
	for _, l := range lines {
		if len(l) != width {
			return false
		}
	}
	return true
}
