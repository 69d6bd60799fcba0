package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/logger"
	"github.com/mrzscan/mrzscan-backend/pkg/messaging"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
	"github.com/mrzscan/mrzscan-backend/pkg/testutil"
)

func TestScanEventPublisher(t *testing.T) {
	mock := testutil.NewMockPublisher()
	p := NewScanEventPublisherWith(mock, logger.Nop())
	ctx := context.Background()

	p.PublishScanCompleted(ctx, "job-1", "req-1", &domain.ScanResult{
		DocumentType: domain.DocumentTypePassport,
		Accuracy:     domain.AccuracyHigh,
		Document:     mrz.Document{MRZType: "TD3", ValidScore: 100},
	})
	p.PublishScanFailed(ctx, "job-2", "", "NO_MRZ_DETECTED", "no machine readable zone detected")

	events := mock.Events()
	require.Len(t, events, 2)

	completed, ok := events[0].Payload.(messaging.ScanCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, messaging.EventScanCompleted, events[0].Type)
	assert.Equal(t, "job-1", completed.JobID)
	assert.Equal(t, "high", completed.Accuracy)
	assert.Equal(t, 100, completed.Document.ValidScore)

	failed, ok := events[1].Payload.(messaging.ScanFailedEvent)
	require.True(t, ok)
	assert.Equal(t, messaging.EventScanFailed, events[1].Type)
	assert.Equal(t, "NO_MRZ_DETECTED", failed.Code)
}

func TestScanEventPublisher_NilAndErrors(t *testing.T) {
	var p *ScanEventPublisher
	assert.NotPanics(t, func() {
		p.PublishScanFailed(context.Background(), "job", "", "X", "y")
	})

	mock := testutil.NewMockPublisher()
	mock.Err = errors.New("channel closed")
	p = NewScanEventPublisherWith(mock, logger.Nop())
	assert.NotPanics(t, func() {
		p.PublishScanFailed(context.Background(), "job", "", "X", "y")
	})
	mock.AssertEventPublished(t, messaging.EventScanFailed)
}
