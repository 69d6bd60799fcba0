//go:build !ocr

package processor

import "github.com/mrzscan/mrzscan-backend/pkg/config"

// NewTesseractProcessor returns the processor, or nil when the binary was
// built without the ocr tag.
func NewTesseractProcessor(cfg config.OCRConfig) Processor {
	return nil
}
