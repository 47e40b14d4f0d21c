// Package handlers implements the HTTP API of the assistant backend.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ionutpopescu27/ByteMeHackaton/internal/assistant"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/conversation"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/documents"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/observability/metrics"
	"github.com/ionutpopescu27/ByteMeHackaton/internal/rag"
	"github.com/ionutpopescu27/ByteMeHackaton/pkg/logging"
)

// CallIDHeader carries the telephony call identifier so concurrent calls get
// separate conversations. Requests without it share the "default" session.
const CallIDHeader = "X-Call-Sid"

const defaultCallID = "default"

// assistantService is the slice of the assistant the handler needs.
type assistantService interface {
	Answer(ctx context.Context, callID, text string) (string, error)
	AnswerWithDocs(ctx context.Context, callID, text, collection string, k int) (assistant.Reply, error)
	Query(ctx context.Context, text, collection string, k int) ([]rag.Document, error)
	EndCall(ctx context.Context, callID, text string) (phone, label string, err error)
	History(ctx context.Context, phone string) ([]conversation.Record, error)
}

// speechService converts between text and audio files.
type speechService interface {
	Synthesize(ctx context.Context, text string) (string, error)
	Transcribe(ctx context.Context, path string) (string, error)
}

// ingestService indexes PDFs into a vector collection.
type ingestService interface {
	IngestPDFs(ctx context.Context, paths []string, collection string) (int, error)
}

// AssistantHandler serves the question answering, speech, and conversation
// endpoints.
type AssistantHandler struct {
	service assistantService
	speech  speechService
	ingest  ingestService
	metrics *metrics.AssistantMetrics
	logger  *logging.Logger
}

// NewAssistantHandler creates the handler.
func NewAssistantHandler(service assistantService, speech speechService, ingest ingestService, m *metrics.AssistantMetrics, logger *logging.Logger) *AssistantHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AssistantHandler{service: service, speech: speech, ingest: ingest, metrics: m, logger: logger}
}

type textRequest struct {
	Text string `json:"text"`
}

type textResponse struct {
	Text string `json:"text"`
}

type pathRequest struct {
	Path string `json:"path"`
}

type pathResponse struct {
	Path string `json:"path"`
}

type pdfsRequest struct {
	Paths []string `json:"paths"`
}

type queryRequest struct {
	Text       string `json:"text"`
	Collection string `json:"collection_name"`
	K          int    `json:"k"`
}

// HealthCheck reports liveness.
func (h *AssistantHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Answer handles POST /rsp: a general question against the seeded Q/A
// collection.
func (h *AssistantHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	start := time.Now()
	reply, err := h.service.Answer(r.Context(), callID(r), req.Text)
	h.metrics.ObserveLatency("rsp", time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObserveAnswer("rsp", "error")
		h.answerError(w, err)
		return
	}
	h.metrics.ObserveAnswer("rsp", "ok")
	writeJSON(w, http.StatusOK, textResponse{Text: reply})
}

// AnswerWithDocs handles POST /rsp_db: a question against an uploaded
// document collection, with form-intent short-circuit and provenance.
func (h *AssistantHandler) AnswerWithDocs(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decode(w, r, &req) {
		return
	}
	start := time.Now()
	reply, err := h.service.AnswerWithDocs(r.Context(), callID(r), req.Text, req.Collection, req.K)
	h.metrics.ObserveLatency("rsp_db", time.Since(start).Seconds())
	if err != nil {
		h.metrics.ObserveAnswer("rsp_db", "error")
		h.answerError(w, err)
		return
	}
	h.metrics.ObserveAnswer("rsp_db", "ok")
	writeJSON(w, http.StatusOK, reply)
}

// Query handles POST /q_db: raw retrieval with no generation.
func (h *AssistantHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if !decode(w, r, &req) {
		return
	}
	docs, err := h.service.Query(r.Context(), req.Text, req.Collection, req.K)
	if err != nil {
		h.answerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]rag.Document{"matches": docs})
}

// Synthesize handles POST /tts.
func (h *AssistantHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	path, err := h.speech.Synthesize(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("tts failed", "error", err)
		writeError(w, http.StatusInternalServerError, "text to speech failed")
		return
	}
	writeJSON(w, http.StatusOK, pathResponse{Path: path})
}

// Transcribe handles POST /speech.
func (h *AssistantHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if !decode(w, r, &req) {
		return
	}
	text, err := h.speech.Transcribe(r.Context(), req.Path)
	if err != nil {
		h.logger.Error("stt failed", "error", err, "path", req.Path)
		writeError(w, http.StatusInternalServerError, "speech to text failed")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: text})
}

// Populate handles POST /populate_chroma: index a list of PDF paths into a
// fresh collection and return its name.
func (h *AssistantHandler) Populate(w http.ResponseWriter, r *http.Request) {
	var req pdfsRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Paths) == 0 {
		writeError(w, http.StatusBadRequest, "paths is empty")
		return
	}
	collection := documents.NewCollectionName()
	if _, err := h.ingest.IngestPDFs(r.Context(), req.Paths, collection); err != nil {
		h.logger.Error("ingest failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingestion failed")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: collection})
}

// StopCall handles POST /stop_call: close the call's conversation and derive
// its label.
func (h *AssistantHandler) StopCall(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	phone, _, err := h.service.EndCall(r.Context(), callID(r), req.Text)
	if err != nil {
		h.logger.Error("stop call failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to close conversation")
		return
	}
	writeJSON(w, http.StatusOK, textResponse{Text: "Call ended. Phone=" + phone + ". New conversation started."})
}

// Conversations handles POST /conv: list a caller's history by phone number.
func (h *AssistantHandler) Conversations(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !decode(w, r, &req) {
		return
	}
	records, err := h.service.History(r.Context(), req.Text)
	if err != nil {
		h.logger.Error("history lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load conversations")
		return
	}
	if records == nil {
		records = []conversation.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *AssistantHandler) answerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, rag.ErrCollectionNotFound):
		writeError(w, http.StatusNotFound, "collection not found")
	case errors.Is(err, rag.ErrNoAnswer):
		writeError(w, http.StatusNotFound, "no answer could be generated")
	case errors.Is(err, rag.ErrInvalidK), errors.Is(err, rag.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("answer pipeline failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func callID(r *http.Request) string {
	if id := r.Header.Get(CallIDHeader); id != "" {
		return id
	}
	return defaultCallID
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
