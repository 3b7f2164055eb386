package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/sarathi-app/sarathi/internal/extract"
	"github.com/sarathi-app/sarathi/internal/rag"
	"github.com/sarathi-app/sarathi/internal/summarize"
	"github.com/sarathi-app/sarathi/internal/version"
)

// SummarizeRequest asks for a summary of inline text or a fetchable URL.
type SummarizeRequest struct {
	Text    string            `json:"text,omitempty"`
	URL     string            `json:"url,omitempty"`
	Model   string            `json:"model,omitempty"`
	Options summarize.Options `json:"options"`
}

// SummarizeResponse carries the finished summary.
type SummarizeResponse struct {
	Summary      string `json:"summary"`
	Model        string `json:"model"`
	WordCount    int    `json:"word_count"`
	ProcessingMS int64  `json:"processing_ms"`
}

// UploadResponse reports an extracted (and optionally indexed) document.
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	WordCount  int    `json:"word_count"`
	Chunks     int    `json:"chunks,omitempty"`
	Text       string `json:"text,omitempty"`
}

// ProcessRequest indexes raw text under a document id.
type ProcessRequest struct {
	DocumentID string `json:"document_id,omitempty"`
	Text       string `json:"text"`
}

// ProcessResponse reports indexing results.
type ProcessResponse struct {
	DocumentID string `json:"document_id"`
	Chunks     int    `json:"chunks"`
	Success    bool   `json:"success"`
}

// QuestionRequest asks a question against an indexed document.
type QuestionRequest struct {
	DocumentID string              `json:"document_id"`
	Question   string              `json:"question"`
	History    []summarize.Message `json:"history,omitempty"`
}

// QuestionResponse carries the answer and its retrieval sources.
type QuestionResponse struct {
	Answer  string         `json:"answer"`
	Sources []SourceResult `json:"sources"`
}

// SourceResult is one retrieved chunk reference.
type SourceResult struct {
	Index   int     `json:"index"`
	Score   float64 `json:"score"`
	Excerpt string  `json:"excerpt"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"models": s.summaries.Models()})
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	text := req.Text
	if text == "" && req.URL != "" {
		extracted, err := s.extractor.FromFile(r.Context(), req.URL, "")
		if err != nil {
			s.writeExtractError(w, err)
			return
		}
		text = extracted
	}
	if text == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "text or url required")
		return
	}

	result, err := s.summaries.Summarize(r.Context(), text, req.Model, req.Options)
	if err != nil {
		if errors.Is(err, summarize.ErrNoProvider) {
			s.writeError(w, http.StatusBadRequest, "unknown_model", err.Error())
			return
		}
		s.writeError(w, http.StatusBadGateway, "provider_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SummarizeResponse{
		Summary:      result.Summary,
		Model:        result.Model,
		WordCount:    result.WordCount,
		ProcessingMS: result.ProcessingTime.Milliseconds(),
	})
}

// handleUpload accepts a multipart document, extracts its text, and indexes
// it for question answering. The extracted text comes back so the client can
// request a summary without re-uploading.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large", "document exceeds upload limit")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "multipart field \"document\" required")
		return
	}
	defer file.Close()

	text, err := s.extractor.FromReader(r.Context(), file, header.Filename, r.FormValue("type"))
	if err != nil {
		s.writeExtractError(w, err)
		return
	}

	resp := UploadResponse{
		Filename:  header.Filename,
		WordCount: extract.WordCount(text),
		Text:      text,
	}

	if r.FormValue("index") != "false" {
		result, err := s.processor.ProcessDocument(r.Context(), "", text)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "index_error", err.Error())
			return
		}
		resp.DocumentID = result.DocumentID
		resp.Chunks = result.Chunks
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRAGProcess(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.Text == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "text required")
		return
	}

	result, err := s.processor.ProcessDocument(r.Context(), req.DocumentID, req.Text)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "index_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ProcessResponse{
		DocumentID: result.DocumentID,
		Chunks:     result.Chunks,
		Success:    true,
	})
}

func (s *Server) handleRAGQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.DocumentID == "" || req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "invalid_request", "document_id and question required")
		return
	}

	result, err := s.answerer.AnswerDocument(r.Context(), req.DocumentID, req.Question, req.History)
	if err != nil {
		switch {
		case errors.Is(err, rag.ErrDocumentNotFound):
			s.writeError(w, http.StatusNotFound, "document_not_found", err.Error())
		case errors.Is(err, rag.ErrNoRelevantChunks):
			s.writeError(w, http.StatusUnprocessableEntity, "no_relevant_chunks", err.Error())
		default:
			s.writeError(w, http.StatusBadGateway, "answer_error", err.Error())
		}
		return
	}

	resp := QuestionResponse{Answer: result.Answer}
	for _, source := range result.Sources {
		resp.Sources = append(resp.Sources, SourceResult{
			Index:   source.Chunk.Index,
			Score:   source.Score,
			Excerpt: excerpt(source.Chunk.Text, 200),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeExtractError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		s.writeError(w, http.StatusUnsupportedMediaType, "unsupported_type", err.Error())
	case errors.Is(err, extract.ErrInsufficientText):
		s.writeError(w, http.StatusUnprocessableEntity, "insufficient_text", err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, "extract_error", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	if s.logger != nil && status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", message)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func excerpt(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "…"
}
