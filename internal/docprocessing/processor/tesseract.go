//go:build ocr

package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/config"
)

// mrzWhitelist keeps Tesseract from guessing lowercase or punctuation
const mrzWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"

// TesseractProcessor runs OCR in-process through libtesseract
type TesseractProcessor struct {
	language    string
	pageSegMode gosseract.PageSegMode
}

// NewTesseractProcessor returns the processor, or nil when the binary was
// built without the ocr tag.
func NewTesseractProcessor(cfg config.OCRConfig) Processor {
	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	return &TesseractProcessor{
		language:    lang,
		pageSegMode: gosseract.PageSegMode(cfg.PageSegMode),
	}
}

func (p *TesseractProcessor) Name() string { return "tesseract" }

func (p *TesseractProcessor) CanProcess(media domain.MediaType) bool {
	return media == domain.MediaImage
}

func (p *TesseractProcessor) Process(ctx context.Context, data []byte) ([]string, error) {
	img, err := EnsurePNG(data)
	if err != nil {
		return nil, fmt.Errorf("tesseract: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("tesseract: set language: %w", err)
	}
	if err := client.SetPageSegMode(p.pageSegMode); err != nil {
		return nil, fmt.Errorf("tesseract: set page seg mode: %w", err)
	}
	if err := client.SetWhitelist(mrzWhitelist); err != nil {
		return nil, fmt.Errorf("tesseract: set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(img); err != nil {
		return nil, fmt.Errorf("tesseract: set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("tesseract: recognize text: %w", err)
	}

	padded := PadLines(CleanLines(strings.Split(text, "\n")))
	lines := ExtractLines(strings.Join(padded, "\n"))
	if len(lines) == 0 {
		return nil, ErrNoText
	}
	return lines, nil
}
