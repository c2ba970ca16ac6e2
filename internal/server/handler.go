package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MalithGihan/pdftext-service/internal/extract"
	"github.com/MalithGihan/pdftext-service/internal/ingest"
	"github.com/MalithGihan/pdftext-service/internal/validate"
	"github.com/MalithGihan/pdftext-service/pkg/types"
)

// Extractor is the core operation behind POST /extract-text.
type Extractor interface {
	Extract(ctx context.Context, up extract.Upload) (types.ExtractionReport, error)
}

type Handler struct {
	extractor         Extractor
	maxUploadBytes    int64
	validateResponses bool
	logger            *slog.Logger
}

func NewHandler(ex Extractor, maxUploadBytes int64, validateResponses bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{extractor: ex, maxUploadBytes: maxUploadBytes, validateResponses: validateResponses, logger: logger}
}

// ExtractText streams the "file" part straight into the pipeline. The file
// name is checked before any of the part body is read.
func (h *Handler) ExtractText(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", middleware.GetReqID(r.Context()))

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	mr, err := r.MultipartReader()
	if err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	part, err := filePart(mr)
	switch {
	case errors.Is(err, errMissingFile):
		writeDetail(w, http.StatusBadRequest, "missing file")
		return
	case isTooLarge(err):
		writeDetail(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	case err != nil:
		writeDetail(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	defer part.Close()

	filename := part.FileName()
	if !ingest.IsPDF(filename) {
		writeDetail(w, http.StatusBadRequest, "Invalid file type. Only .pdf allowed.")
		return
	}

	report, err := h.extractor.Extract(r.Context(), extract.Upload{Filename: filename, Body: part})
	if err != nil {
		if isTooLarge(err) {
			writeDetail(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		status, detail := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("extract text", "filename", filename, "error", err)
		}
		writeDetail(w, status, detail)
		return
	}

	if h.validateResponses {
		if err := validate.Report(report); err != nil {
			log.Error("extraction report failed contract", "filename", filename, "error", err)
			writeDetail(w, http.StatusInternalServerError, "internal error")
			return
		}
	}
	writeJSON(w, http.StatusOK, report)
}

var errMissingFile = errors.New("missing file part")

// filePart advances to the "file" form part, discarding any other fields.
func filePart(mr *multipart.Reader) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, errMissingFile
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == "file" && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}

func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "PDF Extractor is running"})
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// classify maps pipeline errors to a status and a fixed client message.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, extract.ErrInvalidFileType):
		return http.StatusBadRequest, "Invalid file type. Only .pdf allowed."
	case errors.Is(err, extract.ErrUnreadableDocument):
		return http.StatusUnprocessableEntity, "Corrupt PDF or Parsing Error. Ensure it is a valid PDF file."
	case errors.Is(err, extract.ErrPersistUpload):
		return http.StatusInternalServerError, "Failed to save file."
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, types.ErrorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
