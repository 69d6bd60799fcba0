package processor

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"unicode/utf8"

	"golang.org/x/image/bmp"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
)

// Magic bytes for image detection
var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	bmpMagic  = []byte{'B', 'M'}
)

// ImageFormat returns "jpeg", "png" or "bmp" for supported images and ""
// otherwise.
func ImageFormat(data []byte) string {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return "jpeg"
	case bytes.HasPrefix(data, pngMagic):
		return "png"
	case len(data) > 14 && bytes.HasPrefix(data, bmpMagic):
		return "bmp"
	default:
		return ""
	}
}

// DetectMedia classifies an upload. The second return is false for content
// no processor understands.
func DetectMedia(data []byte) (domain.MediaType, bool) {
	if ImageFormat(data) != "" {
		return domain.MediaImage, true
	}
	if len(data) > 0 && utf8.Valid(data) && !bytes.ContainsRune(data, 0) {
		return domain.MediaText, true
	}
	return "", false
}

// EnsurePNG returns data unchanged when it is already JPEG or PNG and
// re-encodes BMP uploads as PNG. Vision services and Leptonica builds
// without BMP support only accept the first two.
func EnsurePNG(data []byte) ([]byte, error) {
	switch ImageFormat(data) {
	case "jpeg", "png":
		return data, nil
	case "bmp":
		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode bmp: %w", err)
		}
		return encodePNG(img)
	default:
		return nil, fmt.Errorf("unsupported image format")
	}
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
