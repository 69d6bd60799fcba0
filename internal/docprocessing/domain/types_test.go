package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

func TestBands_Grade(t *testing.T) {
	tests := []struct {
		score int
		want  Accuracy
	}{
		{100, AccuracyHigh},
		{80, AccuracyHigh},
		{79, AccuracyMedium},
		{50, AccuracyMedium},
		{49, AccuracyLow},
		{17, AccuracyLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultBands.Grade(tt.score), "score %d", tt.score)
	}

	strict := Bands{High: 95, Medium: 90}
	assert.Equal(t, AccuracyLow, strict.Grade(83))
}

func TestParseDocumentType(t *testing.T) {
	for in, want := range map[string]DocumentType{
		"":         DocumentTypeAuto,
		"auto":     DocumentTypeAuto,
		"passport": DocumentTypePassport,
		"id_card":  DocumentTypeIDCard,
		"visa":     DocumentTypeVisa,
	} {
		got, ok := ParseDocumentType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	_, ok := ParseDocumentType("reisepass")
	assert.False(t, ok)
}

func TestDocumentType_Accepts(t *testing.T) {
	assert.True(t, DocumentTypePassport.Accepts(mrz.TD3))
	assert.False(t, DocumentTypePassport.Accepts(mrz.TD1))
	assert.True(t, DocumentTypeIDCard.Accepts(mrz.TD2))
	assert.True(t, DocumentTypeVisa.Accepts(mrz.MRVB))
	assert.True(t, DocumentTypeAuto.Accepts(mrz.MRVA))
}

func TestWarnings(t *testing.T) {
	r, err := mrz.Build([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	})
	require.NoError(t, err)
	assert.Empty(t, Warnings(r, DocumentTypePassport))

	warnings := Warnings(r, DocumentTypeIDCard)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "TD3")

	r, err = mrz.Build([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408123F1204159ZE184226B<<<<<10",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"date of birth check digit mismatch",
		"composite check digit mismatch",
	}, Warnings(r, DocumentTypeAuto))
}
