package mrz_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

var allTypes = []mrz.Type{mrz.TD1, mrz.TD2, mrz.TD3, mrz.MRVA, mrz.MRVB}

func TestFieldsFor_SpansFitLayout(t *testing.T) {
	for _, typ := range allTypes {
		t.Run(typ.String(), func(t *testing.T) {
			fields := mrz.FieldsFor(typ)
			require.NotEmpty(t, fields)

			used := make(map[int][]bool)
			for _, f := range fields {
				require.GreaterOrEqual(t, f.Start, 0, f.Name)
				require.LessOrEqual(t, f.End(), typ.LineWidth(), "%s exceeds line width", f.Name)
				require.Less(t, f.Line, typ.LineCount(), f.Name)

				if used[f.Line] == nil {
					used[f.Line] = make([]bool, typ.LineWidth())
				}
				for i := f.Start; i < f.End(); i++ {
					require.False(t, used[f.Line][i], "%s overlaps at line %d offset %d", f.Name, f.Line, i)
					used[f.Line][i] = true
				}
			}
		})
	}
}

func TestFieldsFor_ReturnsCopy(t *testing.T) {
	fields := mrz.FieldsFor(mrz.TD3)
	fields[0].Length = 99

	assert.Equal(t, 2, mrz.FieldsFor(mrz.TD3)[0].Length)
	assert.Nil(t, mrz.FieldsFor(mrz.TypeUnknown))
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  mrz.Type
	}{
		{"TD1", []string{strings.Repeat("<", 30), strings.Repeat("<", 30), strings.Repeat("<", 30)}, mrz.TD1},
		{"TD2", []string{"I" + strings.Repeat("<", 35), strings.Repeat("<", 36)}, mrz.TD2},
		{"TD3", []string{"P" + strings.Repeat("<", 43), strings.Repeat("<", 44)}, mrz.TD3},
		{"MRVA", []string{"V" + strings.Repeat("<", 43), strings.Repeat("<", 44)}, mrz.MRVA},
		{"MRVB", []string{"V" + strings.Repeat("<", 35), strings.Repeat("<", 36)}, mrz.MRVB},
		{"surrounding blanks", []string{"", "  P" + strings.Repeat("<", 43) + " ", "", strings.Repeat("<", 44), "\t"}, mrz.TD3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mrz.DetectType(tt.lines)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectType_NoMRZ(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"empty", nil},
		{"one line", []string{strings.Repeat("<", 44)}},
		{"four lines", []string{"<", "<", "<", "<"}},
		{"line one short", []string{strings.Repeat("<", 29), strings.Repeat("<", 30), strings.Repeat("<", 30)}},
		{"mixed widths", []string{strings.Repeat("<", 44), strings.Repeat("<", 36)}},
		{"unknown width", []string{strings.Repeat("<", 40), strings.Repeat("<", 40)}},
		{"non-ascii", []string{"P<UTÖ" + strings.Repeat("<", 38), strings.Repeat("<", 44)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mrz.DetectType(tt.lines)
			assert.True(t, errors.Is(err, mrz.ErrNoMRZ), "error = %v", err)
			assert.Equal(t, mrz.TypeUnknown, got)
		})
	}
}

func TestType_StringRoundTrip(t *testing.T) {
	for _, typ := range allTypes {
		assert.Equal(t, typ, mrz.ParseType(typ.String()))
	}
	assert.Equal(t, mrz.TD3, mrz.ParseType("td3"))
	assert.Equal(t, mrz.TypeUnknown, mrz.ParseType("passport"))
}

func TestType_HasComposite(t *testing.T) {
	assert.True(t, mrz.TD1.HasComposite())
	assert.True(t, mrz.TD2.HasComposite())
	assert.True(t, mrz.TD3.HasComposite())
	assert.False(t, mrz.MRVA.HasComposite())
	assert.False(t, mrz.MRVB.HasComposite())
}
