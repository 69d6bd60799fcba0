package mrz

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDate is returned by ParseDate for spans that are not a real
// calendar date in YYMMDD form.
var ErrInvalidDate = errors.New("mrz: invalid date")

// DateLayout is the display layout of normalized dates.
const DateLayout = "2006-01-02"

// centuryWindow is how many years past the reference year a two digit year
// may point before it is read as the previous century.
const centuryWindow = 10

// ParseDate converts a YYMMDD span into a calendar date.
//
// The century is inferred from referenceYear: a two digit year greater than
// (referenceYear mod 100) + 10 is placed in the 1900s, anything else in the
// 2000s. People born more than about ninety years before referenceYear are
// therefore mapped into the wrong century; the MRZ carries nothing that would
// let a decoder tell them apart.
func ParseDate(yymmdd string, referenceYear int) (time.Time, error) {
	if len(yymmdd) != 6 || !all(yymmdd, isDigit) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, yymmdd)
	}
	yy := int(yymmdd[0]-'0')*10 + int(yymmdd[1]-'0')
	month := int(yymmdd[2]-'0')*10 + int(yymmdd[3]-'0')
	day := int(yymmdd[4]-'0')*10 + int(yymmdd[5]-'0')

	year := 2000 + yy
	if yy > referenceYear%100+centuryWindow {
		year = 1900 + yy
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range values, so 310231 would become March 3.
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, yymmdd)
	}
	return d, nil
}

// NormalizeDate renders a YYMMDD span as YYYY-MM-DD. Spans that do not parse
// are returned unchanged.
func NormalizeDate(yymmdd string, referenceYear int) string {
	d, err := ParseDate(yymmdd, referenceYear)
	if err != nil {
		return yymmdd
	}
	return d.Format(DateLayout)
}

// NormalizeName builds the display name "GIVEN NAMES SURNAME". Fillers become
// spaces and whitespace runs collapse. When both parts are empty the result is
// NotAvailable.
func NormalizeName(given, surname string) string {
	name := collapseFillers(strings.Join([]string{given, surname}, " "))
	if name == "" {
		return NotAvailable
	}
	return name
}
