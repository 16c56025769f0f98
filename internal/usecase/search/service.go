// Package search reconciles retrieval hits back to catalog record identity.
package search

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/kansei-cloud/docket/internal/domain"
	domsearch "github.com/kansei-cloud/docket/internal/domain/search"
)

// DefaultResultCount bounds retrieval when the caller does not specify one.
const DefaultResultCount = 10

// Service runs one search request: retrieval, then per-hit reconciliation.
type Service struct {
	retriever    Retriever
	docs         DocumentFinder
	logger       *zap.Logger
	defaultLimit int
}

// New creates a search service.
func New(retriever Retriever, docs DocumentFinder, logger *zap.Logger) *Service {
	return &Service{retriever: retriever, docs: docs, logger: logger, defaultLimit: DefaultResultCount}
}

// WithDefaultLimit overrides the result-count bound applied when the
// caller does not specify one.
func (s *Service) WithDefaultLimit(n int) *Service {
	if n > 0 {
		s.defaultLimit = n
	}
	return s
}

// Response aggregates reconciled results for one query.
type Response struct {
	Query        string             `json:"query"`
	Results      []domsearch.Result `json:"results"`
	TotalResults int                `json:"totalResults"`
}

// Search validates the query, invokes the retrieval backend, and resolves
// each hit's locator to a catalog record identity. A hit resolves through
// an exact fileKey lookup; on a miss or lookup failure it falls back to the
// locator's filename with its extension stripped. Hits with no locator, or
// whose locator yields no filename, are dropped. Lookup failures degrade
// the hit, never the request.
func (s *Service) Search(ctx context.Context, query string, limit int) (Response, error) {
	if strings.TrimSpace(query) == "" {
		return Response{}, fmt.Errorf("query text is required: %w", domain.ErrInvalidInput)
	}
	if s.retriever == nil {
		return Response{}, fmt.Errorf("retrieval backend is not set: %w", domain.ErrUnconfigured)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	hits, err := s.retriever.Retrieve(ctx, query, limit)
	if err != nil {
		return Response{}, fmt.Errorf("retrieve: %w", err)
	}

	results := make([]domsearch.Result, 0, len(hits))
	for _, hit := range hits {
		res, ok := s.reconcile(ctx, hit)
		if !ok {
			continue
		}
		results = append(results, res)
	}

	return Response{Query: query, Results: results, TotalResults: len(results)}, nil
}

// reconcile maps one hit to a result. Returns false when the hit cannot be
// resolved to any identity.
func (s *Service) reconcile(ctx context.Context, hit domsearch.Hit) (domsearch.Result, bool) {
	if hit.Locator == "" {
		s.logger.Warn("drop hit without storage locator")
		return domsearch.Result{}, false
	}

	res := domsearch.Result{
		Content:  hit.Text,
		Score:    hit.Score,
		Locator:  hit.Locator,
		Metadata: hit.Metadata,
	}

	doc, err := s.docs.FindByFileKey(ctx, domsearch.StorageKey(hit.Locator))
	switch {
	case err == nil:
		res.DocumentID = doc.ID
		res.Title = doc.Title
		return res, true
	case !errors.Is(err, domain.ErrDocumentNotFound):
		s.logger.Warn("fileKey lookup failed, falling back to derived identity",
			zap.String("locator", hit.Locator),
			zap.Error(err),
		)
	}

	derived := domsearch.FallbackIdentity(hit.Locator)
	if derived == "" {
		s.logger.Warn("drop hit with unresolvable locator", zap.String("locator", hit.Locator))
		return domsearch.Result{}, false
	}
	res.DocumentID = derived
	res.Title = path.Base(domsearch.StorageKey(hit.Locator))
	return res, true
}
