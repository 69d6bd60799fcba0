package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/i18n"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

var generatedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func scanResult(t *testing.T) *domain.ScanResult {
	t.Helper()
	r, err := mrz.Build([]string{
		"P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<",
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10",
	})
	require.NoError(t, err)
	doc := mrz.NewDocument(r, mrz.Meta{Method: "text", Walltime: 1234 * time.Millisecond, ReferenceYear: 2024})
	return &domain.ScanResult{
		DocumentType: domain.DocumentTypePassport,
		Accuracy:     domain.DefaultBands.Grade(doc.ValidScore),
		Document:     doc,
	}
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, f)

	f, ok = ParseFormat("TXT")
	assert.True(t, ok)
	assert.Equal(t, FormatText, f)

	_, ok = ParseFormat("pdf")
	assert.False(t, ok)
}

func TestRender_JSON(t *testing.T) {
	out, err := Render(scanResult(t), FormatJSON, i18n.NewLocalizer("en"), generatedAt)
	require.NoError(t, err)

	assert.Equal(t, "passport_data.json", out.Filename)
	assert.Equal(t, "application/json", out.ContentType)
	assert.True(t, strings.HasPrefix(string(out.Body), "{\n  \""), "indented by two spaces")

	var doc mrz.Document
	require.NoError(t, json.Unmarshal(out.Body, &doc))
	assert.Equal(t, "L898902C3", doc.Number)
	assert.Equal(t, 100, doc.ValidScore)
	assert.InDelta(t, 1.234, doc.Walltime, 1e-9)
}

func TestRender_TextEnglish(t *testing.T) {
	out, err := Render(scanResult(t), FormatText, i18n.NewLocalizer("en"), generatedAt)
	require.NoError(t, err)
	assert.Equal(t, "passport_data.txt", out.Filename)

	text := string(out.Body)
	assert.True(t, strings.HasPrefix(text, "Passport data\n=============\n"))
	assert.Contains(t, text, "- Generated at: 2024-05-01T12:00:00Z\n")
	assert.Contains(t, text, "- Accuracy: 100% (High accuracy)\n")
	assert.Contains(t, text, "- Document number: L898902C3\n")
	assert.Contains(t, text, "- Date of birth: 1974-08-12\n")
	assert.Contains(t, text, "- Expiration date: 2012-04-15\n")
	assert.Contains(t, text, "- Optional data (2): N/A\n")
	assert.Contains(t, text, "- Composite check: valid\n")
	assert.Contains(t, text, "- Processing time: 1.23 s\n")
}

func TestRender_TextArabic(t *testing.T) {
	out, err := Render(scanResult(t), FormatText, i18n.NewLocalizer("ar"), generatedAt)
	require.NoError(t, err)

	text := string(out.Body)
	assert.True(t, strings.HasPrefix(text, "بيانات جواز السفر\n"))
	assert.Contains(t, text, "- رقم الوثيقة: L898902C3\n")
	assert.Contains(t, text, "- بيانات اختيارية (2): غير متوفر\n")
	assert.Contains(t, text, "دقة عالية")
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render(scanResult(t), Format("pdf"), i18n.NewLocalizer("en"), generatedAt)
	assert.Error(t, err)
}
