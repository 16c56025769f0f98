package catalog

import (
	"context"

	"github.com/kansei-cloud/docket/internal/domain/catalog/filter"
	domdoc "github.com/kansei-cloud/docket/internal/domain/document"
)

// Repository defines the storage contract for catalog records.
type Repository interface {
	List(ctx context.Context, f filter.Filter) ([]domdoc.Document, error)
	Get(ctx context.Context, id string) (domdoc.Document, error)
	Put(ctx context.Context, doc domdoc.Document) error
	Patch(ctx context.Context, id string, p domdoc.Patch) (domdoc.Document, error)
	Delete(ctx context.Context, id string) error
}

// BlobBroker issues time-limited capability URLs for catalog blobs.
type BlobBroker interface {
	IssueUploadURL(ctx context.Context, fileName, contentType string) (url, key string, err error)
	IssueDownloadURL(ctx context.Context, key string) (string, error)
}
