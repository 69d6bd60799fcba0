package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter("mrz-service", &buf).
		WithComponent("service").
		WithJobID("job-1").
		WithRequestID("req-1").
		WithError(errors.New("ocr failed"))

	log.Info().Int("valid_score", 83).Msg("scan finished")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "mrz-service", line["service"])
	assert.Equal(t, "service", line["component"])
	assert.Equal(t, "job-1", line["job_id"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "ocr failed", line["error"])
	assert.Equal(t, float64(83), line["valid_score"])
	assert.Equal(t, "scan finished", line["message"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithJobID("x").Info().Msg("dropped")
	})
}
