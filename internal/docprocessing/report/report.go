// Package report renders scan results as downloadable files.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/i18n"
)

// Format selects the report encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "txt"
)

// ParseFormat accepts "json" and "txt". Empty means JSON.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, true
	case FormatText:
		return FormatText, true
	default:
		return "", false
	}
}

// Rendered is a report ready to be sent as an attachment
type Rendered struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render encodes result in the requested format. Text reports are
// localized with loc.
func Render(result *domain.ScanResult, format Format, loc *i18n.Localizer, generatedAt time.Time) (*Rendered, error) {
	switch format {
	case FormatJSON:
		body, err := JSON(result)
		if err != nil {
			return nil, err
		}
		return &Rendered{Filename: "passport_data.json", ContentType: "application/json", Body: body}, nil
	case FormatText:
		return &Rendered{
			Filename:    "passport_data.txt",
			ContentType: "text/plain; charset=utf-8",
			Body:        Text(result, loc, generatedAt),
		}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// JSON writes the flat document indented by two spaces. Non-ASCII text is
// kept as is.
func JSON(result *domain.ScanResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result.Document); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}

// Text writes a human readable summary in the localizer's language
func Text(result *domain.ScanResult, loc *i18n.Localizer, generatedAt time.Time) []byte {
	doc := result.Document
	var b strings.Builder

	title := loc.T("report.title")
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", utf8.RuneCountInString(title)) + "\n")
	line(&b, loc.T("report.generated_at"), generatedAt.UTC().Format(time.RFC3339))
	line(&b, loc.T("report.accuracy"), fmt.Sprintf("%d%% (%s)", doc.ValidScore, loc.T("accuracy."+string(result.Accuracy))))
	b.WriteString("\n")

	na := loc.T("report.not_available")
	value := func(v string) string {
		if v == "" {
			return na
		}
		return v
	}
	for _, f := range []struct{ key, value string }{
		{"type", doc.Type},
		{"country", doc.Country},
		{"number", doc.Number},
		{"surname", doc.Surname},
		{"names", doc.Names},
		{"nationality", doc.Nationality},
		{"date_of_birth", doc.DateOfBirthISO},
		{"sex", doc.Sex},
		{"expiration_date", doc.ExpirationISO},
		{"personal_number", doc.PersonalNumber},
		{"optional1", doc.Optional1},
		{"optional2", doc.Optional2},
	} {
		line(&b, loc.T("report.fields."+f.key), value(f.value))
	}
	b.WriteString("\n")

	validity := func(ok bool) string {
		if ok {
			return loc.T("report.valid")
		}
		return loc.T("report.invalid")
	}
	line(&b, loc.T("report.fields.number"), validity(doc.ValidNumber))
	line(&b, loc.T("report.fields.date_of_birth"), validity(doc.ValidDateOfBirth))
	line(&b, loc.T("report.fields.expiration_date"), validity(doc.ValidExpirationDate))
	if doc.CheckPersonalNumber != "" {
		line(&b, loc.T("report.fields.personal_number"), validity(doc.ValidPersonalNumber))
	}
	if doc.CheckComposite != "" {
		line(&b, loc.T("report.fields.composite"), validity(doc.ValidComposite))
	}
	b.WriteString("\n")

	line(&b, loc.T("report.fields.mrz_type"), value(doc.MRZType))
	line(&b, loc.T("report.fields.method"), value(doc.Method))
	line(&b, loc.T("report.fields.walltime"), loc.T("report.seconds", map[string]string{
		"value": strconv.FormatFloat(doc.Walltime, 'f', 2, 64),
	}))

	return []byte(b.String())
}

func line(b *strings.Builder, label, value string) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}
