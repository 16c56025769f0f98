package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kansei-cloud/docket/internal/domain"
	domdoc "github.com/kansei-cloud/docket/internal/domain/document"
	domsearch "github.com/kansei-cloud/docket/internal/domain/search"
)

// --- Mocks ---

type mockRetriever struct {
	hits      []domsearch.Hit
	err       error
	calls     int
	lastQuery string
	lastLimit int
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, limit int) ([]domsearch.Hit, error) {
	m.calls++
	m.lastQuery = query
	m.lastLimit = limit
	return m.hits, m.err
}

type mockFinder struct {
	byKey map[string]domdoc.Document
	err   error
}

func (m *mockFinder) FindByFileKey(_ context.Context, key string) (domdoc.Document, error) {
	if m.err != nil {
		return domdoc.Document{}, m.err
	}
	d, ok := m.byKey[key]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

func newService(r *mockRetriever, f *mockFinder) *Service {
	return New(r, f, zap.NewNop())
}

// --- Tests ---

func TestSearch_EmptyQueryRejectedBeforeRetrieval(t *testing.T) {
	retriever := &mockRetriever{}
	svc := newService(retriever, &mockFinder{})

	_, err := svc.Search(context.Background(), "  ", 5)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if retriever.calls != 0 {
		t.Errorf("retrieval backend invoked %d times, want 0", retriever.calls)
	}
}

func TestSearch_NilRetrieverIsUnconfigured(t *testing.T) {
	svc := New(nil, &mockFinder{}, zap.NewNop())
	_, err := svc.Search(context.Background(), "q", 5)
	if !errors.Is(err, domain.ErrUnconfigured) {
		t.Fatalf("expected ErrUnconfigured, got %v", err)
	}
}

func TestSearch_DefaultResultCount(t *testing.T) {
	retriever := &mockRetriever{}
	svc := newService(retriever, &mockFinder{})

	if _, err := svc.Search(context.Background(), "q", 0); err != nil {
		t.Fatalf("search: %v", err)
	}
	if retriever.lastLimit != DefaultResultCount {
		t.Errorf("limit = %d, want %d", retriever.lastLimit, DefaultResultCount)
	}
}

func TestSearch_ConfiguredDefaultLimit(t *testing.T) {
	retriever := &mockRetriever{}
	svc := newService(retriever, &mockFinder{}).WithDefaultLimit(25)

	if _, err := svc.Search(context.Background(), "q", 0); err != nil {
		t.Fatalf("search: %v", err)
	}
	if retriever.lastLimit != 25 {
		t.Errorf("limit = %d, want 25", retriever.lastLimit)
	}
}

func TestSearch_ExactLookupWinsOverFallback(t *testing.T) {
	retriever := &mockRetriever{hits: []domsearch.Hit{{
		Locator: "s3://bucket/documents/1700000000000_report.pdf",
		Text:    "matched chunk",
		Score:   0.9,
	}}}
	finder := &mockFinder{byKey: map[string]domdoc.Document{
		"documents/1700000000000_report.pdf": {ID: "42", Title: "Annual Report"},
	}}
	svc := newService(retriever, finder)

	resp, err := svc.Search(context.Background(), "report", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.TotalResults != 1 {
		t.Fatalf("totalResults = %d", resp.TotalResults)
	}
	res := resp.Results[0]
	if res.DocumentID != "42" {
		t.Errorf("documentId = %q, want 42", res.DocumentID)
	}
	if res.Title != "Annual Report" || res.Content != "matched chunk" || res.Score != 0.9 {
		t.Errorf("result = %+v", res)
	}
}

func TestSearch_FallbackIdentityWhenNoMatch(t *testing.T) {
	retriever := &mockRetriever{hits: []domsearch.Hit{{
		Locator: "s3://bucket/documents/1700000000000_report.pdf",
		Text:    "chunk",
		Score:   0.5,
	}}}
	svc := newService(retriever, &mockFinder{})

	resp, err := svc.Search(context.Background(), "report", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.TotalResults != 1 {
		t.Fatalf("totalResults = %d", resp.TotalResults)
	}
	if got := resp.Results[0].DocumentID; got != "1700000000000_report" {
		t.Errorf("documentId = %q, want 1700000000000_report", got)
	}
}

func TestSearch_LookupErrorDegradesToFallback(t *testing.T) {
	retriever := &mockRetriever{hits: []domsearch.Hit{{
		Locator: "s3://bucket/documents/123_memo.pdf",
	}}}
	finder := &mockFinder{err: errors.New("store unavailable")}
	svc := newService(retriever, finder)

	resp, err := svc.Search(context.Background(), "memo", 5)
	if err != nil {
		t.Fatalf("lookup failure must not fail the request: %v", err)
	}
	if resp.TotalResults != 1 || resp.Results[0].DocumentID != "123_memo" {
		t.Errorf("response = %+v", resp)
	}
}

func TestSearch_DropsUnresolvableHits(t *testing.T) {
	retriever := &mockRetriever{hits: []domsearch.Hit{
		{Text: "no locator", Score: 0.9},
		{Locator: "s3://bucket/", Text: "no filename", Score: 0.8},
		{Locator: "s3://bucket/documents/9_ok.pdf", Text: "keeps", Score: 0.7},
	}}
	svc := newService(retriever, &mockFinder{})

	resp, err := svc.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if resp.TotalResults != 1 {
		t.Fatalf("totalResults = %d, want 1", resp.TotalResults)
	}
	if resp.Results[0].DocumentID != "9_ok" {
		t.Errorf("documentId = %q", resp.Results[0].DocumentID)
	}
}

func TestSearch_MetadataPassthrough(t *testing.T) {
	retriever := &mockRetriever{hits: []domsearch.Hit{{
		Locator:  "s3://bucket/documents/1_a.pdf",
		Metadata: map[string]any{"page": int64(3)},
	}}}
	svc := newService(retriever, &mockFinder{})

	resp, err := svc.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := resp.Results[0].Metadata["page"]; got != int64(3) {
		t.Errorf("metadata page = %#v", got)
	}
}

func TestSearch_BackendErrorPropagates(t *testing.T) {
	retriever := &mockRetriever{err: errors.New("retrieval backend down")}
	svc := newService(retriever, &mockFinder{})

	_, err := svc.Search(context.Background(), "q", 5)
	if err == nil {
		t.Fatal("expected error")
	}
}
