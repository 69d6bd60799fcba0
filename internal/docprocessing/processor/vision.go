package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
)

// VisionProcessor sends images to an external MRZ reader service and
// decodes the lines it returns locally.
type VisionProcessor struct {
	visionURL  string
	httpClient *http.Client
}

// NewVisionProcessor creates a processor that calls the given vision service URL.
func NewVisionProcessor(url string, timeout time.Duration) *VisionProcessor {
	if timeout <= 0 {
		timeout = 60 * time.Second // inference on CPU-only hosts is slow
	}
	return &VisionProcessor{
		visionURL:  url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *VisionProcessor) Name() string { return "vision" }

func (p *VisionProcessor) CanProcess(media domain.MediaType) bool {
	return media == domain.MediaImage
}

func (p *VisionProcessor) Process(ctx context.Context, data []byte) ([]string, error) {
	img, err := EnsurePNG(data)
	if err != nil {
		return nil, fmt.Errorf("vision: %w", err)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "document.bin")
	if err != nil {
		return nil, fmt.Errorf("vision: create form file: %w", err)
	}
	if _, err := part.Write(img); err != nil {
		return nil, fmt.Errorf("vision: write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("vision: close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.visionURL+"/api/v1/mrz", body)
	if err != nil {
		return nil, fmt.Errorf("vision: create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: service request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("vision: read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision: service returned %d: %s", resp.StatusCode, string(respBody))
	}

	var visionResp visionMRZResponse
	if err := json.Unmarshal(respBody, &visionResp); err != nil {
		return nil, fmt.Errorf("vision: parse response: %w", err)
	}

	lines := CleanLines(visionResp.Lines)
	if len(lines) == 0 && visionResp.Text != "" {
		lines = ExtractLines(visionResp.Text)
	}
	if len(lines) == 0 {
		return nil, ErrNoText
	}
	return lines, nil
}

// visionMRZResponse is what the reader service answers. Older versions only
// send the raw text.
type visionMRZResponse struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}
