package handler

import (
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/domain"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/report"
	"github.com/mrzscan/mrzscan-backend/internal/docprocessing/service"
	"github.com/mrzscan/mrzscan-backend/pkg/errors"
	"github.com/mrzscan/mrzscan-backend/pkg/httputil"
	"github.com/mrzscan/mrzscan-backend/pkg/i18n"
	"github.com/mrzscan/mrzscan-backend/pkg/logger"
)

// Handler handles HTTP requests for MRZ reading
type Handler struct {
	service       *service.Service
	maxUploadSize int64
	log           *logger.Logger
}

// NewHandler creates a new MRZ handler
func NewHandler(svc *service.Service, maxUploadSize int64, log *logger.Logger) *Handler {
	return &Handler{
		service:       svc,
		maxUploadSize: maxUploadSize,
		log:           log.WithComponent("handler"),
	}
}

// Routes mounts the MRZ endpoints on r
func (h *Handler) Routes(r chi.Router) {
	r.Post("/parse", h.Parse)
	r.Post("/scan", h.Scan)
	r.Get("/scan/{jobId}", h.GetJob)
	r.Get("/scan/{jobId}/report", h.Report)
	r.Post("/chip-check", h.ChipCheck)
}

type parseRequest struct {
	Lines        []string `json:"lines" validate:"omitempty,max=3,dive,mrzline"`
	Text         string   `json:"text" validate:"required_without=Lines,max=4096"`
	DocumentType string   `json:"document_type" validate:"omitempty,oneof=auto passport id_card visa"`
}

// Parse handles POST /api/v1/mrz/parse
// Body: {"lines": [...]} or {"text": "..."}, optional "document_type".
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := httputil.DecodeJSONLocalized(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	docType, _ := domain.ParseDocumentType(req.DocumentType)

	result, err := h.service.Parse(r.Context(), service.ParseRequest{
		Lines:        req.Lines,
		Text:         req.Text,
		DocumentType: docType,
		RequestID:    httputil.GetRequestID(r.Context()),
		RequestedBy:  httputil.GetUserID(r.Context()),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// Scan handles POST /api/v1/mrz/scan
// Accepts multipart form with:
// - file: the document image (jpg, png, bmp) or MRZ text
// - document_type: auto, passport, id_card or visa
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadSize {
		httputil.ErrorLocalized(w, r, errors.PayloadTooLarge(h.maxUploadSize))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.ErrorLocalized(w, r, errors.PayloadTooLarge(h.maxUploadSize))
			return
		}
		httputil.ErrorLocalized(w, r, errors.BadRequest("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	docType, ok := domain.ParseDocumentType(r.FormValue("document_type"))
	if !ok {
		httputil.ErrorLocalized(w, r, errors.Validation(map[string]string{
			"document_type": "must be one of: auto passport id_card visa",
		}))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.ErrorLocalized(w, r, errors.Validation(map[string]string{"file": "this field is required"}))
		return
	}
	defer file.Close()

	// Read file into memory (never to disk)
	data, err := io.ReadAll(file)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read upload")
		httputil.ErrorLocalized(w, r, errors.BadRequest("failed to read uploaded file"))
		return
	}
	if len(data) == 0 {
		httputil.ErrorLocalized(w, r, errors.Validation(map[string]string{"file": "this field is required"}))
		return
	}

	// data is zeroed by the service
	job, err := h.service.StartScan(r.Context(), service.ScanRequest{
		Data:         data,
		ContentType:  header.Header.Get("Content-Type"),
		DocumentType: docType,
		RequestID:    httputil.GetRequestID(r.Context()),
		RequestedBy:  httputil.GetUserID(r.Context()),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	httputil.JSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/mrz/scan/{jobId}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.GetJob(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, job)
}

// Report handles GET /api/v1/mrz/scan/{jobId}/report?format=json|txt
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	format, ok := report.ParseFormat(r.URL.Query().Get("format"))
	if !ok {
		httputil.ErrorLocalized(w, r, errors.Validation(map[string]string{"format": "must be one of: json txt"}))
		return
	}

	rendered, err := h.service.Report(r.Context(), chi.URLParam(r, "jobId"), format, i18n.LocalizerFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", rendered.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rendered.Filename))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(rendered.Body)
}

type chipCheckRequest struct {
	Lines []string `json:"lines" validate:"required,min=2,max=3,dive,mrzline"`
	DG1   string   `json:"dg1" validate:"required,hexadecimal"`
}

// ChipCheck handles POST /api/v1/mrz/chip-check
// Body: {"lines": [...], "dg1": "<hex encoded DG1 file>"}
func (h *Handler) ChipCheck(w http.ResponseWriter, r *http.Request) {
	var req chipCheckRequest
	if err := httputil.DecodeJSONLocalized(r, &req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.ErrorLocalized(w, r, err)
		return
	}

	trimmed := strings.TrimPrefix(strings.TrimPrefix(req.DG1, "0x"), "0X")
	dg1, err := hex.DecodeString(trimmed)
	if err != nil {
		httputil.ErrorLocalized(w, r, errors.Validation(map[string]string{"dg1": "must be hex encoded"}))
		return
	}

	result, err := h.service.ChipCheck(r.Context(), req.Lines, dg1)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// respondError logs unexpected errors before answering
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		h.log.Error().Err(err).
			Str("request_id", httputil.GetRequestID(r.Context())).
			Msg("request failed")
	}
	httputil.ErrorLocalized(w, r, err)
}
