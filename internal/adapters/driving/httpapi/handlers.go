package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/finsight-labs/finsearch-cli/internal/chunker"
	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
	"github.com/finsight-labs/finsearch-cli/internal/logger"
)

// envelope is the uniform response shape.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

type documentRequest struct {
	Text         string         `json:"text"`
	Metadata     map[string]any `json:"metadata"`
	ChunkSize    int            `json:"chunk_size"`
	ChunkOverlap int            `json:"chunk_overlap"`
}

type searchRequest struct {
	Query   string         `json:"query"`
	K       int            `json:"k"`
	Filters map[string]any `json:"filters"`
}

type companySearchRequest struct {
	Ticker string `json:"ticker"`
	Query  string `json:"query"`
	K      int    `json:"k"`
}

type financialDataRequest struct {
	Data   map[string]any `json:"data"`
	Source string         `json:"source"`
}

type filingRequest struct {
	Filing  domain.Filing `json:"filing_data"`
	Content string        `json:"content"`
}

type newsArticleRequest struct {
	Article domain.Article `json:"article"`
}

type contextRequest struct {
	Query   string   `json:"query"`
	Tickers []string `json:"tickers"`
	K       int      `json:"k"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "finsearch",
	})
}

func (s *Server) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	var req documentRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ChunkSize == 0 {
		req.ChunkSize = chunker.DefaultChunkSize
		if req.ChunkOverlap == 0 {
			req.ChunkOverlap = chunker.DefaultChunkOverlap
		}
	}

	res, err := s.ingest.AddDocument(r.Context(), req.Text,
		domain.MetadataOf(req.Metadata), req.ChunkSize, req.ChunkOverlap)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, res)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid document id"})
		return
	}

	doc, err := s.index.Document(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, doc)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.search.Search(r.Context(), req.Query, req.K, domain.MetadataOf(req.Filters))
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, resp)
}

func (s *Server) handleCompanySearch(w http.ResponseWriter, r *http.Request) {
	var req companySearchRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.search.SearchByCompany(r.Context(), req.Ticker, req.Query, req.K)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, resp)
}

func (s *Server) handleAddFinancialData(w http.ResponseWriter, r *http.Request) {
	var req financialDataRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.ingest.AddFinancialData(r.Context(), req.Data, req.Source)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, res)
}

func (s *Server) handleAddFiling(w http.ResponseWriter, r *http.Request) {
	var req filingRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.ingest.AddFiling(r.Context(), req.Filing, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, res)
}

func (s *Server) handleAddNewsArticle(w http.ResponseWriter, r *http.Request) {
	var req newsArticleRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := s.ingest.AddNewsArticle(r.Context(), req.Article)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, res)
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if !decode(w, r, &req) {
		return
	}

	resp, err := s.search.FinancialContext(r.Context(), req.Query, req.Tickers, req.K)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.index.Clear()
	writeData(w, map[string]string{"status": "cleared"})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeData(w, s.index.Stats())
}

// decode parses the JSON request body, answering 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), envelope{Error: err.Error()})
}

// statusFor maps domain errors to client status codes; anything
// unrecognised is a server fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnknownCompany):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyIndex),
		errors.Is(err, domain.ErrEmptyDocument),
		errors.Is(err, domain.ErrInvalidChunking),
		errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response: %v", err)
	}
}
