package consumers

import (
	"context"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/events"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/service"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/storage"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
	"github.com/mrzscan/mrzscan-backend/pkg/logger"
	"github.com/mrzscan/mrzscan-backend/pkg/messaging"
)

// QueueScanRequests receives MRZ text submitted by other services
const QueueScanRequests = "mrz-service.scan-requests"

// ScanRequestConsumer parses MRZ text delivered as events and publishes
// the outcome.
type ScanRequestConsumer struct {
	consumer  *messaging.Consumer
	service   *service.Service
	publisher *events.ScanEventPublisher
	logger    *logger.Logger
}

// NewScanRequestConsumer creates a new scan request consumer
func NewScanRequestConsumer(
	rmq *messaging.RabbitMQ,
	svc *service.Service,
	publisher *events.ScanEventPublisher,
	log *logger.Logger,
) (*ScanRequestConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, QueueScanRequests, log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeMRZEvents, messaging.EventScanRequested); err != nil {
		return nil, err
	}

	return newScanRequestConsumer(consumer, svc, publisher, log), nil
}

func newScanRequestConsumer(consumer *messaging.Consumer, svc *service.Service, publisher *events.ScanEventPublisher, log *logger.Logger) *ScanRequestConsumer {
	c := &ScanRequestConsumer{
		consumer:  consumer,
		service:   svc,
		publisher: publisher,
		logger:    log.WithComponent("consumer"),
	}
	consumer.RegisterHandler(messaging.EventScanRequested, c.handleScanRequested)
	return c
}

// Start starts consuming messages
func (c *ScanRequestConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// handleScanRequested returns an error only for failures worth a retry.
// Bad input is answered with a failed event and acked.
func (c *ScanRequestConsumer) handleScanRequested(ctx context.Context, event *messaging.Event) error {
	var data messaging.ScanRequestedEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	jobID := storage.GenerateJobID()
	log := c.logger.WithJobID(jobID)
	log.Info().Str("request_id", data.RequestID).Msg("received scan request")

	docType, ok := domain.ParseDocumentType(data.DocumentType)
	if !ok {
		c.publisher.PublishScanFailed(ctx, jobID, data.RequestID, "VALIDATION_ERROR", "unknown document type")
		return nil
	}

	result, err := c.service.Parse(ctx, service.ParseRequest{
		JobID:        jobID,
		Lines:        data.Lines,
		Text:         data.Text,
		DocumentType: docType,
		RequestID:    data.RequestID,
		RequestedBy:  data.RequestedBy,
	})
	if err != nil {
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			log.Info().Str("code", appErr.Code).Msg("scan request rejected")
			c.publisher.PublishScanFailed(ctx, jobID, data.RequestID, appErr.Code, appErr.Message)
			return nil
		}
		return err
	}

	c.publisher.PublishScanCompleted(ctx, jobID, data.RequestID, result)
	return nil
}
