package handlers

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/documents"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// maxUploadBytes caps PDF uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// documentStore is the metadata store behind the document endpoints.
type documentStore interface {
	Insert(ctx context.Context, name, path, collection string) (documents.Record, error)
	List(ctx context.Context, includeDeleted bool, limit int) ([]documents.Record, error)
	SoftDelete(ctx context.Context, id int64) error
}

// DocumentsHandler serves PDF upload and listing.
type DocumentsHandler struct {
	store     documentStore
	ingest    ingestService
	uploadDir string
	logger    *logging.Logger
}

// NewDocumentsHandler creates the handler. Uploads land in uploadDir.
func NewDocumentsHandler(store documentStore, ingest ingestService, uploadDir string, logger *logging.Logger) *DocumentsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &DocumentsHandler{store: store, ingest: ingest, uploadDir: uploadDir, logger: logger}
}

// UploadAndIndex handles POST /upload_and_index: save the PDF, index it into
// a fresh collection, and record the metadata.
func (h *DocumentsHandler) UploadAndIndex(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	path, err := documents.SavePDF(h.uploadDir, header.Filename, data)
	if errors.Is(err, documents.ErrNotPDF) {
		writeError(w, http.StatusBadRequest, "only PDF files are supported")
		return
	}
	if err != nil {
		h.logger.Error("save upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save upload")
		return
	}

	collection := documents.NewCollectionName()
	if _, err := h.ingest.IngestPDFs(r.Context(), []string{path}, collection); err != nil {
		h.logger.Error("index upload failed", "error", err, "path", path)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}

	rec, err := h.store.Insert(r.Context(), filepath.Base(path), path, collection)
	if err != nil {
		h.logger.Error("record upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record document")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// List handles GET /documents.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	records, err := h.store.List(r.Context(), includeDeleted, 0)
	if err != nil {
		h.logger.Error("list documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Recent handles GET /documents/recent.
func (h *DocumentsHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 3
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	records, err := h.store.List(r.Context(), false, limit)
	if err != nil {
		h.logger.Error("list recent documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// Delete handles DELETE /documents/{id} with a soft delete.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return
	}
	if err := h.store.SoftDelete(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		h.logger.Error("delete document failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
