package events

import (
	"context"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/pkg/logger"
	"github.com/mrzscan/mrzscan-backend/pkg/messaging"
)

// ScanEventPublisher publishes scan lifecycle events. A nil publisher is a
// no-op so the service runs without RabbitMQ.
type ScanEventPublisher struct {
	publisher messaging.EventPublisher
	logger    *logger.Logger
}

// NewScanEventPublisher declares the MRZ exchange and returns a publisher on it
func NewScanEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ScanEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeMRZEvents, "mrz-service", log)
	if err != nil {
		return nil, err
	}
	return NewScanEventPublisherWith(publisher, log), nil
}

// NewScanEventPublisherWith wraps an existing publisher
func NewScanEventPublisherWith(publisher messaging.EventPublisher, log *logger.Logger) *ScanEventPublisher {
	return &ScanEventPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishScanCompleted publishes a scan completed event
func (p *ScanEventPublisher) PublishScanCompleted(ctx context.Context, jobID, requestID string, result *domain.ScanResult) {
	if p == nil {
		return
	}

	data := messaging.ScanCompletedEvent{
		JobID:        jobID,
		RequestID:    requestID,
		DocumentType: string(result.DocumentType),
		Accuracy:     string(result.Accuracy),
		Document:     result.Document,
		Warnings:     result.Warnings,
	}

	if err := p.publisher.Publish(ctx, messaging.EventScanCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to publish scan completed event")
	}
}

// PublishScanFailed publishes a scan failed event
func (p *ScanEventPublisher) PublishScanFailed(ctx context.Context, jobID, requestID, code, reason string) {
	if p == nil {
		return
	}

	data := messaging.ScanFailedEvent{
		JobID:     jobID,
		RequestID: requestID,
		Code:      code,
		Reason:    reason,
	}

	if err := p.publisher.Publish(ctx, messaging.EventScanFailed, data); err != nil {
		p.logger.Error().Err(err).Str("job_id", jobID).Msg("failed to publish scan failed event")
	}
}
