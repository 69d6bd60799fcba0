// Package chip cross-checks a printed MRZ against the copy stored in the
// eMRTD chip (data group 1). A mismatch points at an OCR error or a
// tampered data page.
package chip

import (
	"fmt"
	"strings"

	"github.com/gmrtd/gmrtd/document"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

// Compared fields, in report order
const (
	FieldDocumentNumber = "number"
	FieldDateOfBirth    = "date_of_birth"
	FieldExpiration     = "expiration_date"
	FieldSurname        = "surname"
	FieldNames          = "names"
	FieldNationality    = "nationality"
	FieldSex            = "sex"
	FieldCountry        = "country"
)

// CompareDG1 decodes the DG1 file read from the chip and compares it field
// by field with r.
func CompareDG1(r *mrz.Record, dg1 []byte) (*domain.ChipComparison, error) {
	parsed, err := document.NewDG1(dg1)
	if err != nil {
		return nil, errors.BadRequest(fmt.Sprintf("invalid DG1: %v", err))
	}
	if parsed == nil || parsed.Mrz == nil {
		return nil, errors.BadRequest("DG1 carries no MRZ")
	}
	chip := parsed.Mrz

	var surname, names string
	if chip.NameOfHolder != nil {
		surname = chip.NameOfHolder.Primary
		names = chip.NameOfHolder.Secondary
	}

	pairs := []struct {
		field     string
		mrz, chip string
	}{
		{FieldDocumentNumber, r.Number.Value, chip.DocumentNumber},
		{FieldDateOfBirth, r.DateOfBirth.Value, chip.DateOfBirth},
		{FieldExpiration, r.Expiration.Value, chip.DateOfExpiry},
		{FieldSurname, r.Surname, surname},
		{FieldNames, r.Names, names},
		{FieldNationality, r.Nationality, chip.Nationality},
		{FieldSex, r.Sex, chip.Sex},
		{FieldCountry, r.Country, chip.IssuingState},
	}

	result := &domain.ChipComparison{Match: true, ValidScore: r.ValidScore}
	for _, p := range pairs {
		result.Compared = append(result.Compared, p.field)
		if normalize(p.mrz) != normalize(p.chip) {
			result.Match = false
			result.Mismatches = append(result.Mismatches, domain.FieldMismatch{
				Field: p.field,
				MRZ:   p.mrz,
				Chip:  p.chip,
			})
		}
	}
	return result, nil
}

// normalize makes both sides comparable: fillers and whitespace runs become
// single spaces, case is ignored.
func normalize(s string) string {
	s = strings.ReplaceAll(s, string(mrz.Filler), " ")
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
