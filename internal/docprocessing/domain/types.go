package domain

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mrzscan/mrzscan-backend/pkg/mrz"
)

// DocumentType is the kind of travel document the caller says it scanned
type DocumentType string

const (
	DocumentTypeAuto     DocumentType = "auto"
	DocumentTypePassport DocumentType = "passport"
	DocumentTypeIDCard   DocumentType = "id_card"
	DocumentTypeVisa     DocumentType = "visa"
)

// ParseDocumentType maps user input to a DocumentType. Empty means auto.
func ParseDocumentType(s string) (DocumentType, bool) {
	switch DocumentType(s) {
	case "", DocumentTypeAuto:
		return DocumentTypeAuto, true
	case DocumentTypePassport, DocumentTypeIDCard, DocumentTypeVisa:
		return DocumentType(s), true
	default:
		return "", false
	}
}

// Accepts reports whether an MRZ layout is plausible for the document type
func (d DocumentType) Accepts(t mrz.Type) bool {
	switch d {
	case DocumentTypePassport:
		return t == mrz.TD3
	case DocumentTypeIDCard:
		return t == mrz.TD1 || t == mrz.TD2
	case DocumentTypeVisa:
		return t == mrz.MRVA || t == mrz.MRVB
	default:
		return true
	}
}

// MediaType is the coarse kind of uploaded content
type MediaType string

const (
	MediaText  MediaType = "text"
	MediaImage MediaType = "image"
)

// ScanStatus represents the processing state of a scan job
type ScanStatus string

const (
	StatusPending    ScanStatus = "pending"
	StatusProcessing ScanStatus = "processing"
	StatusCompleted  ScanStatus = "completed"
	StatusFailed     ScanStatus = "failed"
)

// Accuracy is the confidence band shown to the operator
type Accuracy string

const (
	AccuracyHigh   Accuracy = "high"
	AccuracyMedium Accuracy = "medium"
	AccuracyLow    Accuracy = "low"
)

// Bands holds the valid_score thresholds of the accuracy bands
type Bands struct {
	High   int
	Medium int
}

// DefaultBands are the 80/50 thresholds operators are used to
var DefaultBands = Bands{High: 80, Medium: 50}

// Grade maps a valid_score to its band
func (b Bands) Grade(score int) Accuracy {
	switch {
	case score >= b.High:
		return AccuracyHigh
	case score >= b.Medium:
		return AccuracyMedium
	default:
		return AccuracyLow
	}
}

// ScanResult is the outcome of one successful MRZ read
type ScanResult struct {
	DocumentType     DocumentType `json:"document_type"`
	Accuracy         Accuracy     `json:"accuracy"`
	Document         mrz.Document `json:"document"`
	Warnings         []string     `json:"warnings,omitempty"`
	ProcessingTimeMs int64        `json:"processing_time_ms"`
}

// ScanJob tracks an asynchronous image scan
type ScanJob struct {
	JobID        string       `json:"job_id"`
	Status       ScanStatus   `json:"status"`
	DocumentType DocumentType `json:"document_type"`
	Result       *ScanResult  `json:"result,omitempty"`
	ErrorCode    string       `json:"error_code,omitempty"`
	Error        string       `json:"error,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// Finished reports whether the job reached a terminal state
func (j *ScanJob) Finished() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// Warnings derives operator hints from a record. The record itself is never
// rejected for them.
func Warnings(r *mrz.Record, docType DocumentType) []string {
	var warnings []string
	if !docType.Accepts(r.Type) {
		warnings = append(warnings, fmt.Sprintf("detected %s layout does not match document type %s", r.Type, docType))
	}
	for _, field := range r.Malformed {
		warnings = append(warnings, "malformed field: "+field)
	}
	if !r.Number.Valid {
		warnings = append(warnings, "document number check digit mismatch")
	}
	if !r.DateOfBirth.Valid {
		warnings = append(warnings, "date of birth check digit mismatch")
	}
	if !r.Expiration.Valid {
		warnings = append(warnings, "expiration date check digit mismatch")
	}
	if r.PersonalNumber != nil && !r.PersonalNumber.Valid {
		warnings = append(warnings, "personal number check digit mismatch")
	}
	if r.Composite != nil && !r.Composite.Valid {
		warnings = append(warnings, "composite check digit mismatch")
	}
	return warnings
}

// AuditEntry records one scan without any personal data. Only the names of
// the fields that were read are kept, never their values.
type AuditEntry struct {
	ID                   string         `db:"id"`
	JobID                string         `db:"job_id"`
	Status               ScanStatus     `db:"status"`
	DocumentType         string         `db:"document_type"`
	MRZType              string         `db:"mrz_type"`
	Method               string         `db:"method"`
	ValidScore           int            `db:"valid_score"`
	FieldsExtracted      pq.StringArray `db:"fields_extracted"`
	ProcessingDurationMs int64          `db:"processing_duration_ms"`
	RequestedBy          string         `db:"requested_by"`
	ImageDeletedAt       *time.Time     `db:"image_deleted_at"`
	CreatedAt            time.Time      `db:"created_at"`
}

// FieldMismatch is one field where the printed MRZ and the chip disagree
type FieldMismatch struct {
	Field string `json:"field"`
	MRZ   string `json:"mrz"`
	Chip  string `json:"chip"`
}

// ChipComparison is the result of checking an OCR'd MRZ against DG1
type ChipComparison struct {
	Match      bool            `json:"match"`
	Compared   []string        `json:"compared"`
	Mismatches []FieldMismatch `json:"mismatches,omitempty"`
	ValidScore int             `json:"valid_score"`
}
