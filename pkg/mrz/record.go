package mrz

import (
	"math"
	"strings"
)

// CheckedField pairs a field with the check digit printed next to it.
type CheckedField struct {
	// Value is the decoded field, fillers trimmed.
	Value string
	// Raw is the exact span the check digit covers.
	Raw string
	// Check is the declared check digit as printed (digit or filler).
	Check byte
	// Valid is true when the field decoded cleanly and the computed check
	// digit matches the declared one.
	Valid bool
}

// CheckString returns the declared check digit as a string.
func (f CheckedField) CheckString() string {
	if f.Check == 0 {
		return ""
	}
	return string(f.Check)
}

// Record is the decoded and validated content of one MRZ.
// It is built once by Build and not modified afterwards.
type Record struct {
	Type         Type
	DocumentType string
	Country      string
	Surname      string
	Names        string
	Number       CheckedField
	Nationality  string
	DateOfBirth  CheckedField
	Sex          string
	Expiration   CheckedField

	// PersonalNumber is set for TD3 only.
	PersonalNumber *CheckedField
	// Composite is nil for visa layouts, which carry no composite digit.
	Composite *CheckedField

	Optional1 string
	Optional2 string

	// Malformed lists fields that broke the structural rules of their kind.
	Malformed []string

	// ValidScore is the 0-100 confidence score, see Score.
	ValidScore int

	lines []string
}

// Lines returns a copy of the normalized input lines.
func (r *Record) Lines() []string {
	return append([]string(nil), r.lines...)
}

// RawText returns the normalized input lines joined by newlines.
func (r *Record) RawText() string {
	return strings.Join(r.lines, "\n")
}

// Checks returns the validity of every check digit the layout carries, in a
// stable order: number, date of birth, expiration, personal number (TD3),
// composite (when present).
func (r *Record) Checks() []bool {
	checks := []bool{r.Number.Valid, r.DateOfBirth.Valid, r.Expiration.Valid}
	if r.PersonalNumber != nil {
		checks = append(checks, r.PersonalNumber.Valid)
	}
	if r.Composite != nil {
		checks = append(checks, r.Composite.Valid)
	}
	return checks
}

// Score turns check digit results into the 0-100 confidence score.
//
// The geometry match counts as one passed check, every check digit counts
// as one more, and the result is 100 × passed / total rounded half away from
// zero. A detected MRZ with no valid digit therefore never scores 0, a fully
// valid one always scores 100, and flipping any check to valid never lowers
// the score.
func Score(checks []bool) int {
	passed := 1
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	return int(math.Round(100 * float64(passed) / float64(len(checks)+1)))
}

// Build detects the layout of lines, decodes every field and validates every
// check digit. When the lines match no layout it returns a nil record and an
// error wrapping ErrNoMRZ. Once the layout is known a record is always
// returned, damaged fields only clear their validity flags.
func Build(lines []string) (*Record, error) {
	lines = normalizeLines(lines)
	t, err := detect(lines)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]string)
	specs := make(map[string]FieldSpec)
	for _, f := range layouts[t].fields {
		raw[f.Name] = f.Slice(lines)
		specs[f.Name] = f
	}

	r := &Record{Type: t, lines: lines}
	text := func(name string) string {
		v, ok := Decode(raw[name], specs[name].Kind)
		if !ok {
			r.Malformed = append(r.Malformed, name)
		}
		return v
	}

	r.DocumentType = text(FieldDocumentType)
	r.Country = text(FieldCountry)
	if _, ok := Decode(raw[FieldNames], KindAlpha); !ok {
		r.Malformed = append(r.Malformed, FieldNames)
	}
	r.Surname, r.Names = SplitNames(raw[FieldNames])

	optional1 := raw[FieldOptional1]
	r.Number, optional1 = r.documentNumber(raw[FieldNumber], raw[FieldCheckNumber], optional1)
	r.Nationality = text(FieldNationality)
	r.DateOfBirth = r.checked(FieldDateOfBirth, raw[FieldDateOfBirth], KindDate, raw[FieldCheckDateOfBirth], false)
	r.Sex = text(FieldSex)
	r.Expiration = r.checked(FieldExpirationDate, raw[FieldExpirationDate], KindDate, raw[FieldCheckExpirationDate], false)

	if t == TD3 {
		pn := r.checked(FieldPersonalNumber, raw[FieldPersonalNumber], KindAlphanumeric, raw[FieldCheckPersonalNumber], true)
		r.PersonalNumber = &pn
	}

	if t.HasComposite() {
		value := compositeValue(t, lines)
		declared := raw[FieldCheckComposite][0]
		r.Composite = &CheckedField{
			Value: value,
			Raw:   value,
			Check: declared,
			Valid: ValidateCheckDigit(value, declared, false),
		}
	}

	if _, ok := specs[FieldOptional1]; ok {
		r.Optional1, _ = Decode(optional1, KindAlphanumeric)
	}
	if _, ok := specs[FieldOptional2]; ok {
		r.Optional2 = text(FieldOptional2)
	}

	r.ValidScore = Score(r.Checks())
	return r, nil
}

// checked decodes a field and validates its check digit. A field that fails
// its structural decode is never valid, even if the digit happens to match.
func (r *Record) checked(name, raw string, kind FieldKind, check string, optional bool) CheckedField {
	value, ok := Decode(raw, kind)
	if !ok {
		r.Malformed = append(r.Malformed, name)
	}
	declared := check[0]
	if !isDigit(declared) && !IsFiller(declared) {
		ok = false
	}
	return CheckedField{
		Value: value,
		Raw:   raw,
		Check: declared,
		Valid: ok && ValidateCheckDigit(raw, declared, optional),
	}
}

// documentNumber handles numbers longer than nine characters. On TD1 and TD2
// documents a filler in the check digit position means the number continues
// in the optional data up to the next filler, and the last character of that
// overflow is the real check digit. The remaining optional data is returned.
func (r *Record) documentNumber(raw, check, optional string) (CheckedField, string) {
	if !IsFiller(check[0]) || optional == "" || (r.Type != TD1 && r.Type != TD2) {
		return r.checked(FieldNumber, raw, KindAlphanumeric, check, false), optional
	}

	end := strings.IndexByte(optional, Filler)
	if end < 0 {
		end = len(optional)
	}
	if end < 2 {
		return r.checked(FieldNumber, raw, KindAlphanumeric, check, false), optional
	}

	full := raw + optional[:end-1]
	field := r.checked(FieldNumber, full, KindAlphanumeric, optional[end-1:end], false)
	if strings.ContainsRune(raw, Filler) {
		// Overflow is only legal when the first nine positions are used up.
		field.Valid = false
	}
	field.Value = trimFillers(raw) + optional[:end-1]
	return field, optional[end:]
}
