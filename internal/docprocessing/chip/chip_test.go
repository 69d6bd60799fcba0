package chip

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

var specimen = []string{
	"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
	"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
}

// dg1File wraps MRZ lines in the DG1 template: 61 L { 5F1F L mrz }
func dg1File(lines []string) []byte {
	m := []byte(strings.Join(lines, ""))
	return append([]byte{0x61, byte(len(m) + 3), 0x5F, 0x1F, byte(len(m))}, m...)
}

func build(t *testing.T, lines []string) *mrz.Record {
	t.Helper()
	r, err := mrz.Build(lines)
	require.NoError(t, err)
	return r
}

func TestCompareDG1_Match(t *testing.T) {
	result, err := CompareDG1(build(t, specimen), dg1File(specimen))
	require.NoError(t, err)

	assert.True(t, result.Match)
	assert.Empty(t, result.Mismatches)
	assert.Equal(t, 100, result.ValidScore)
	assert.Equal(t, []string{
		FieldDocumentNumber, FieldDateOfBirth, FieldExpiration, FieldSurname,
		FieldNames, FieldNationality, FieldSex, FieldCountry,
	}, result.Compared)
}

func TestCompareDG1_OCRMisreads(t *testing.T) {
	ocr := []string{
		"P<UTOERIKSSON<<ANNA<MARLA<<<<<<<<<<<<<<<<<<<",
		"L8989O2C36UTO7408122F1204159ZE184226B<<<<<10",
	}

	result, err := CompareDG1(build(t, ocr), dg1File(specimen))
	require.NoError(t, err)

	assert.False(t, result.Match)
	assert.Equal(t, []domain.FieldMismatch{
		{Field: FieldDocumentNumber, MRZ: "L8989O2C3", Chip: "L898902C3"},
		{Field: FieldNames, MRZ: "ANNA MARLA", Chip: "ANNA MARIA"},
	}, normalizeMismatches(result.Mismatches))
	assert.Less(t, result.ValidScore, 100)
}

func TestCompareDG1_InvalidFile(t *testing.T) {
	r := build(t, specimen)

	for name, data := range map[string][]byte{
		"empty":  nil,
		"no mrz": {0x61, 0x03, 0x01, 0x01, 0x00},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := CompareDG1(r, data)
			require.Error(t, err)
			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "BAD_REQUEST", appErr.Code)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ANNA MARIA", normalize("ANNA<MARIA<<<"))
	assert.Equal(t, "ANNA MARIA", normalize(" anna  maria "))
	assert.Equal(t, "", normalize("<"))
}

// normalizeMismatches trims chip values so the assertion does not depend on
// how the DG1 decoder pads them.
func normalizeMismatches(in []domain.FieldMismatch) []domain.FieldMismatch {
	out := make([]domain.FieldMismatch, len(in))
	for i, m := range in {
		m.Chip = normalize(m.Chip)
		out[i] = m
	}
	return out
}
