package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/chip"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/events"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/processor"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/report"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/storage"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
	"github.com/mrzscan/mrzscan-backend/pkg/i18n"
	"github.com/mrzscan/mrzscan-backend/pkg/logger"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

// scanTimeout bounds one asynchronous scan across all processors
const scanTimeout = 2 * time.Minute

// AuditWriter stores audit entries. Nil disables auditing.
type AuditWriter interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
}

// Options tunes result grading
type Options struct {
	Bands domain.Bands
	// ReferenceYear anchors two digit years. Zero means the current year.
	ReferenceYear int
	// PadShortLines retries lines one or two characters short of a layout
	// width with trailing fillers restored. Off means short lines are
	// reported as no MRZ.
	PadShortLines bool
}

// Service orchestrates MRZ reading: detect media → dispatch → decode → cleanup
type Service struct {
	registry      *processor.Registry
	jobs          storage.JobStore
	audit         AuditWriter
	events        *events.ScanEventPublisher
	bands         domain.Bands
	referenceYear int
	padShortLines bool
	log           *logger.Logger
	now           func() time.Time
	wg            sync.WaitGroup
}

// NewService creates a new MRZ service. audit and publisher may be nil.
func NewService(registry *processor.Registry, jobs storage.JobStore, audit AuditWriter, publisher *events.ScanEventPublisher, opts Options, log *logger.Logger) *Service {
	bands := opts.Bands
	if bands == (domain.Bands{}) {
		bands = domain.DefaultBands
	}
	return &Service{
		registry:      registry,
		jobs:          jobs,
		audit:         audit,
		events:        publisher,
		bands:         bands,
		referenceYear: opts.ReferenceYear,
		padShortLines: opts.PadShortLines,
		log:           log.WithComponent("service"),
		now:           time.Now,
	}
}

// ParseRequest is MRZ text to decode synchronously. Lines wins over Text.
// JobID keys the audit entry and is generated when empty.
type ParseRequest struct {
	JobID        string
	Lines        []string
	Text         string
	DocumentType domain.DocumentType
	RequestID    string
	RequestedBy  string
}

// Parse decodes MRZ text. No MRZ yields a NO_MRZ_DETECTED error.
func (s *Service) Parse(ctx context.Context, req ParseRequest) (*domain.ScanResult, error) {
	start := s.now()
	jobID := req.JobID
	if jobID == "" {
		jobID = storage.GenerateJobID()
	}

	var lines []string
	if len(req.Lines) > 0 {
		lines = processor.CleanLines(req.Lines)
	} else {
		lines = processor.ExtractLines(req.Text)
	}

	record, err := s.decode(lines)
	if err != nil {
		s.log.Info().Str("job_id", jobID).Int("lines", len(lines)).Msg("no MRZ in submitted text")
		s.writeAudit(ctx, &domain.AuditEntry{
			JobID:                jobID,
			Status:               domain.StatusFailed,
			DocumentType:         string(req.DocumentType),
			Method:               "text",
			ProcessingDurationMs: s.now().Sub(start).Milliseconds(),
			RequestedBy:          req.RequestedBy,
		})
		return nil, errors.NoMRZDetected()
	}

	result := s.result(record, "text", req.DocumentType, s.now().Sub(start))
	s.log.Info().
		Str("job_id", jobID).
		Str("mrz_type", result.Document.MRZType).
		Int("valid_score", result.Document.ValidScore).
		Int64("duration_ms", result.ProcessingTimeMs).
		Msg("MRZ parsed")

	s.writeAudit(ctx, auditEntry(jobID, req.RequestedBy, result, nil))
	return result, nil
}

// ScanRequest is an uploaded document to read asynchronously
type ScanRequest struct {
	Data         []byte
	ContentType  string
	DocumentType domain.DocumentType
	RequestID    string
	RequestedBy  string
}

// StartScan creates a scan job and processes the upload asynchronously.
// Returns the job immediately so the caller can poll for results.
// Upload bytes are zeroed as soon as processing ends.
func (s *Service) StartScan(ctx context.Context, req ScanRequest) (*domain.ScanJob, error) {
	media, ok := processor.DetectMedia(req.Data)
	if !ok {
		storage.ZeroBytes(req.Data)
		return nil, errors.UnsupportedMedia(req.ContentType)
	}

	job := &domain.ScanJob{
		JobID:        storage.GenerateJobID(),
		Status:       domain.StatusProcessing,
		DocumentType: req.DocumentType,
		CreatedAt:    s.now().UTC(),
	}

	processors := s.registry.FindProcessors(media)
	if len(processors) == 0 {
		storage.ZeroBytes(req.Data)
		job.Status = domain.StatusFailed
		job.ErrorCode = "UNSUPPORTED_MEDIA_TYPE"
		job.Error = fmt.Sprintf("no processor available for %s uploads", media)
		if err := s.jobs.Save(ctx, job); err != nil {
			return nil, fmt.Errorf("save scan job: %w", err)
		}
		return job, nil
	}

	if err := s.jobs.Save(ctx, job); err != nil {
		storage.ZeroBytes(req.Data)
		return nil, fmt.Errorf("save scan job: %w", err)
	}

	// Detached so the request ending does not cancel processing
	bgCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.processAsync(bgCtx, job.JobID, req, processors)
	}()

	return job, nil
}

// processAsync tries processors in order; the first one whose output decodes wins.
func (s *Service) processAsync(ctx context.Context, jobID string, req ScanRequest, processors []processor.Processor) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	log := s.log.WithJobID(jobID)
	start := s.now()

	var (
		record  *mrz.Record
		method  string
		lastErr error
	)
	for _, proc := range processors {
		log.Info().Str("processor", proc.Name()).Msg("trying MRZ extraction")

		lines, err := proc.Process(ctx, req.Data)
		if err == nil {
			record, err = s.decode(lines)
		}
		if err == nil {
			method = proc.Name()
			break
		}
		lastErr = err
		log.Warn().Err(err).Str("processor", proc.Name()).Msg("processor failed, trying next")
	}

	storage.ZeroBytes(req.Data)
	imageDeletedAt := s.now().UTC()
	elapsed := s.now().Sub(start)

	if record == nil {
		code, reason := failure(lastErr)
		s.updateJob(ctx, jobID, func(j *domain.ScanJob) {
			j.Status = domain.StatusFailed
			j.ErrorCode = code
			j.Error = reason
			j.CompletedAt = &imageDeletedAt
		})
		s.writeAudit(ctx, &domain.AuditEntry{
			JobID:                jobID,
			Status:               domain.StatusFailed,
			DocumentType:         string(req.DocumentType),
			ProcessingDurationMs: elapsed.Milliseconds(),
			RequestedBy:          req.RequestedBy,
			ImageDeletedAt:       &imageDeletedAt,
		})
		s.events.PublishScanFailed(ctx, jobID, req.RequestID, code, reason)
		log.Error().Err(lastErr).Msg("all processors failed")
		return
	}

	result := s.result(record, method, req.DocumentType, elapsed)
	s.updateJob(ctx, jobID, func(j *domain.ScanJob) {
		j.Status = domain.StatusCompleted
		j.Result = result
		j.CompletedAt = &imageDeletedAt
	})
	s.writeAudit(ctx, auditEntry(jobID, req.RequestedBy, result, &imageDeletedAt))
	s.events.PublishScanCompleted(ctx, jobID, req.RequestID, result)

	log.Info().
		Str("processor", method).
		Str("mrz_type", result.Document.MRZType).
		Int("valid_score", result.Document.ValidScore).
		Int64("duration_ms", result.ProcessingTimeMs).
		Msg("MRZ scan completed")
}

// GetJob retrieves a scan job by ID
func (s *Service) GetJob(ctx context.Context, jobID string) (*domain.ScanJob, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return nil, errors.NotFoundWithKey("scan_job")
		}
		return nil, fmt.Errorf("get scan job: %w", err)
	}
	return job, nil
}

// Report renders the result of a completed job as a download
func (s *Service) Report(ctx context.Context, jobID string, format report.Format, loc *i18n.Localizer) (*report.Rendered, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.StatusCompleted || job.Result == nil {
		return nil, errors.Conflict(fmt.Sprintf("scan job is %s", job.Status))
	}
	return report.Render(job.Result, format, loc, s.now())
}

// ChipCheck decodes lines and compares them with the chip's DG1 file
func (s *Service) ChipCheck(ctx context.Context, lines []string, dg1 []byte) (*domain.ChipComparison, error) {
	record, err := s.decode(processor.CleanLines(lines))
	if err != nil {
		return nil, errors.NoMRZDetected()
	}
	cmp, err := chip.CompareDG1(record, dg1)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Bool("match", cmp.Match).
		Int("mismatches", len(cmp.Mismatches)).
		Msg("chip comparison finished")
	return cmp, nil
}

// Wait blocks until running scans have finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// decode builds a record, retrying with trailing fillers restored when
// the lines are slightly short and padding is enabled.
func (s *Service) decode(lines []string) (*mrz.Record, error) {
	record, err := mrz.Build(lines)
	if err == nil || !s.padShortLines {
		return record, err
	}
	if padded := processor.PadLines(lines); !equal(padded, lines) {
		if record, perr := mrz.Build(padded); perr == nil {
			return record, nil
		}
	}
	return nil, err
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s *Service) result(record *mrz.Record, method string, docType domain.DocumentType, elapsed time.Duration) *domain.ScanResult {
	if docType == "" {
		docType = domain.DocumentTypeAuto
	}
	doc := mrz.NewDocument(record, mrz.Meta{
		Method:        method,
		Walltime:      elapsed,
		ReferenceYear: s.referenceYear,
	})
	return &domain.ScanResult{
		DocumentType:     docType,
		Accuracy:         s.bands.Grade(doc.ValidScore),
		Document:         doc,
		Warnings:         domain.Warnings(record, docType),
		ProcessingTimeMs: elapsed.Milliseconds(),
	}
}

func failure(err error) (code, reason string) {
	switch {
	case err == nil, errors.Is(err, mrz.ErrNoMRZ), errors.Is(err, processor.ErrNoText):
		return "NO_MRZ_DETECTED", "no machine readable zone detected"
	case errors.Is(err, context.DeadlineExceeded):
		return "PROCESSING_TIMEOUT", "scan timed out"
	default:
		return "PROCESSING_FAILED", "all processors failed"
	}
}

func (s *Service) updateJob(ctx context.Context, jobID string, update func(*domain.ScanJob)) {
	if err := s.jobs.Update(ctx, jobID, update); err != nil {
		s.log.Error().Err(err).Str("job_id", jobID).Msg("failed to update scan job")
	}
}

// writeAudit records the scan. Failures are logged and never fail the scan.
func (s *Service) writeAudit(ctx context.Context, entry *domain.AuditEntry) {
	if s.audit == nil {
		return
	}
	if entry.DocumentType == "" {
		entry.DocumentType = string(domain.DocumentTypeAuto)
	}
	if err := s.audit.Create(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("job_id", entry.JobID).Msg("failed to write audit entry")
	}
}

func auditEntry(jobID, requestedBy string, result *domain.ScanResult, imageDeletedAt *time.Time) *domain.AuditEntry {
	return &domain.AuditEntry{
		JobID:                jobID,
		Status:               domain.StatusCompleted,
		DocumentType:         string(result.DocumentType),
		MRZType:              result.Document.MRZType,
		Method:               result.Document.Method,
		ValidScore:           result.Document.ValidScore,
		FieldsExtracted:      fieldsExtracted(&result.Document),
		ProcessingDurationMs: result.ProcessingTimeMs,
		RequestedBy:          requestedBy,
		ImageDeletedAt:       imageDeletedAt,
	}
}

// fieldsExtracted lists the keys of non-empty identity fields. Values are
// never audited.
func fieldsExtracted(doc *mrz.Document) []string {
	fields := []struct {
		key, value string
	}{
		{"type", doc.Type},
		{"country", doc.Country},
		{"number", doc.Number},
		{"surname", doc.Surname},
		{"names", doc.Names},
		{"nationality", doc.Nationality},
		{"date_of_birth", doc.DateOfBirth},
		{"sex", doc.Sex},
		{"expiration_date", doc.Expiration},
		{"personal_number", doc.PersonalNumber},
		{"optional1", doc.Optional1},
		{"optional2", doc.Optional2},
	}
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.value != "" {
			keys = append(keys, f.key)
		}
	}
	return keys
}
