package processor

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
)

// MRZ line widths: TD1, TD2/MRV-B, TD3/MRV-A
const (
	widthTD1 = 30
	widthTD2 = 36
	widthTD3 = 44
)

// TextProcessor reads MRZ lines from plain text: typed by an operator,
// pasted from another system or produced by an OCR engine.
type TextProcessor struct{}

func NewTextProcessor() *TextProcessor {
	return &TextProcessor{}
}

func (p *TextProcessor) Name() string {
	return "text"
}

func (p *TextProcessor) CanProcess(media domain.MediaType) bool {
	return media == domain.MediaText
}

func (p *TextProcessor) Process(ctx context.Context, data []byte) ([]string, error) {
	lines := ExtractLines(string(data))
	if len(lines) == 0 {
		return nil, ErrNoText
	}
	return lines, nil
}

// CleanLine prepares one line for decoding: accents are stripped, letters
// upper-cased and all whitespace removed. OCR engines commonly render "<<"
// as a guillemet, which is undone as well.
func CleanLine(line string) string {
	line = strings.ReplaceAll(line, "«", "<<")
	folded, _, err := transform.String(asciiFold, line)
	if err == nil {
		line = folded
	}
	line = strings.ToUpper(line)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, line)
}

// CleanLines applies CleanLine and drops lines that end up empty
func CleanLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if c := CleanLine(l); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// asciiFold decomposes characters and drops combining marks, so É becomes E
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ExtractLines finds the MRZ inside free text. The last run of three TD1
// lines or two TD2/TD3 lines wins, since the MRZ sits at the bottom of the
// data page. When no such run exists the cleaned lines are returned as they
// are and the decoder decides.
func ExtractLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	cleaned := CleanLines(strings.Split(text, "\n"))

	var best []string
	for start := 0; start < len(cleaned); {
		if !isMRZCharset(cleaned[start]) {
			start++
			continue
		}
		width := len(cleaned[start])
		end := start + 1
		for end < len(cleaned) && len(cleaned[end]) == width && isMRZCharset(cleaned[end]) {
			end++
		}
		run := cleaned[start:end]
		switch {
		case width == widthTD1 && len(run) >= 3:
			best = run[len(run)-3:]
		case (width == widthTD2 || width == widthTD3) && len(run) >= 2:
			best = run[len(run)-2:]
		}
		start = end
	}

	if best != nil {
		return append([]string(nil), best...)
	}
	return cleaned
}

func isMRZCharset(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') && c != '<' {
			return false
		}
	}
	return true
}

// PadLines restores trailing fillers OCR engines drop. Only lines at most
// two characters short of a known width are touched.
func PadLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = padLine(l)
	}
	return out
}

func padLine(line string) string {
	for _, width := range []int{widthTD1, widthTD2, widthTD3} {
		if missing := width - len(line); missing > 0 && missing <= 2 {
			return line + strings.Repeat("<", missing)
		}
	}
	return line
}
