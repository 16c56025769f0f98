package search

import (
	"context"

	domdoc "github.com/kansei-cloud/docket/internal/domain/document"
	domsearch "github.com/kansei-cloud/docket/internal/domain/search"
)

// Retriever queries the external retrieval backend for ranked hits.
type Retriever interface {
	Retrieve(ctx context.Context, query string, limit int) ([]domsearch.Hit, error)
}

// DocumentFinder resolves catalog records by their attached storage key.
type DocumentFinder interface {
	FindByFileKey(ctx context.Context, fileKey string) (domdoc.Document, error)
}
