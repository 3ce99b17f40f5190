package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query   string            `json:"query" jsonschema:"the search query to find financial documents"`
	Limit   int               `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
	Filters map[string]string `json:"filters,omitempty" jsonschema:"exact-match metadata filters, e.g. {\"ticker\": \"TSM\"}"`
}

// CompanySearchInput is the input schema for the company_search tool.
type CompanySearchInput struct {
	Ticker string `json:"ticker" jsonschema:"company ticker symbol, e.g. TSM"`
	Query  string `json:"query" jsonschema:"the search query"`
	Limit  int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 5)"`
}

// ContextInput is the input schema for the financial_context tool.
type ContextInput struct {
	Query   string   `json:"query" jsonschema:"the financial question to gather context for"`
	Tickers []string `json:"tickers,omitempty" jsonschema:"ticker symbols to prioritise"`
	Limit   int      `json:"limit,omitempty" jsonschema:"maximum number of context snippets (default 5)"`
}

// SearchOutput is the output schema for search tools.
type SearchOutput struct {
	Results    []ResultOutput `json:"results"`
	Count      int            `json:"count"`
	Confidence float64        `json:"confidence"`
}

// ResultOutput represents a single search result.
type ResultOutput struct {
	DocumentID int               `json:"document_id"`
	ChunkID    int               `json:"chunk_id"`
	Text       string            `json:"text"`
	Confidence float64           `json:"confidence"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// StatsInput is the (empty) input schema for the index_stats tool.
type StatsInput struct{}

// StatsOutput is the output schema for the index_stats tool.
type StatsOutput struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	Sources        map[string]int `json:"sources,omitempty"`
	Companies      map[string]int `json:"companies,omitempty"`
	EmbeddingModel string         `json:"embedding_model"`
	Dimensions     int            `json:"dimensions"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search across all indexed financial documents",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "company_search",
		Description: "Search documents about a specific company by ticker",
	}, s.handleCompanySearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "financial_context",
		Description: "Gather ranked context for a financial question, prioritising the given tickers",
	}, s.handleContext)

	if s.ports.Index != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_stats",
			Description: "Report index totals and per-source/per-company breakdowns",
		}, s.handleStats)
	}
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	var filters domain.Metadata
	if len(input.Filters) > 0 {
		filters = make(domain.Metadata, len(input.Filters))
		for key, val := range input.Filters {
			filters[key] = domain.ValueOf(val)
		}
	}

	resp, err := s.ports.Search.Search(ctx, input.Query, input.Limit, filters)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, searchOutput(resp), nil
}

func (s *Server) handleCompanySearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompanySearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	resp, err := s.ports.Search.SearchByCompany(ctx, input.Ticker, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}
	return nil, searchOutput(resp), nil
}

func (s *Server) handleContext(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ContextInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	resp, err := s.ports.Search.FinancialContext(ctx, input.Query, input.Tickers, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    resultOutputs(resp.Results),
		Count:      len(resp.Results),
		Confidence: resp.Confidence,
	}
	return nil, output, nil
}

func (s *Server) handleStats(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatsInput,
) (*mcp.CallToolResult, StatsOutput, error) {
	stats := s.ports.Index.Stats()
	return nil, StatsOutput{
		TotalDocuments: stats.TotalDocuments,
		TotalChunks:    stats.TotalChunks,
		Sources:        stats.Sources,
		Companies:      stats.Companies,
		EmbeddingModel: stats.EmbeddingModel,
		Dimensions:     stats.Dimensions,
	}, nil
}

func searchOutput(resp *domain.SearchResponse) SearchOutput {
	return SearchOutput{
		Results:    resultOutputs(resp.Results),
		Count:      len(resp.Results),
		Confidence: resp.Confidence,
	}
}

func resultOutputs(results []domain.SearchResult) []ResultOutput {
	out := make([]ResultOutput, len(results))
	for i := range results {
		meta := make(map[string]string, len(results[i].Metadata))
		for key, val := range results[i].Metadata {
			meta[key] = val.String()
		}
		out[i] = ResultOutput{
			DocumentID: results[i].DocumentID,
			ChunkID:    results[i].ChunkID,
			Text:       results[i].Text,
			Confidence: results[i].Confidence,
			Metadata:   meta,
		}
	}
	return out
}
