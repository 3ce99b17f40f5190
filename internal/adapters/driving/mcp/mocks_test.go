package mcp

import (
	"context"

	"github.com/finsight-labs/finsearch-cli/internal/core/domain"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	response *domain.SearchResponse
	context  *domain.ContextResponse
	err      error

	lastQuery   string
	lastTicker  string
	lastFilters domain.Metadata
	lastTickers []string
}

func (m *mockSearchService) Search(
	_ context.Context, query string, _ int, filters domain.Metadata,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastFilters = filters
	return m.response, m.err
}

func (m *mockSearchService) SearchByCompany(
	_ context.Context, ticker, query string, _ int,
) (*domain.SearchResponse, error) {
	m.lastTicker = ticker
	m.lastQuery = query
	return m.response, m.err
}

func (m *mockSearchService) FinancialContext(
	_ context.Context, query string, tickers []string, _ int,
) (*domain.ContextResponse, error) {
	m.lastQuery = query
	m.lastTickers = tickers
	return m.context, m.err
}

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	stats domain.Stats
	doc   *domain.Document
	err   error
}

func (m *mockIndexService) Document(_ int) (*domain.Document, error) {
	return m.doc, m.err
}

func (m *mockIndexService) Stats() domain.Stats {
	return m.stats
}

func (m *mockIndexService) Clear() {}

func (m *mockIndexService) Snapshot(_ context.Context) error {
	return m.err
}

func (m *mockIndexService) Restore(_ context.Context) (bool, error) {
	return false, m.err
}
