// Package catalog orchestrates the CRUD lifecycle of catalog records.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kansei-cloud/docket/internal/domain"
	"github.com/kansei-cloud/docket/internal/domain/catalog/filter"
	domdoc "github.com/kansei-cloud/docket/internal/domain/document"
)

// DeletePolicy selects what DELETE does to a record.
type DeletePolicy string

const (
	// DeleteHard removes the record from the store after an existence check.
	DeleteHard DeletePolicy = "hard"
	// DeleteSoft transitions the record to the terminal deleted status.
	DeleteSoft DeletePolicy = "soft"
)

// Service handles catalog record lifecycle and blob access grants.
type Service struct {
	repo   Repository
	blobs  BlobBroker
	policy DeletePolicy
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a catalog service.
func New(repo Repository, blobs BlobBroker, policy DeletePolicy, logger *zap.Logger) *Service {
	s := &Service{
		repo:   repo,
		blobs:  blobs,
		policy: policy,
		logger: logger,
		now:    time.Now,
	}
	// Millisecond-timestamp identity, carried over from the original
	// allocation scheme. Unique enough at expected request rates.
	s.newID = func() string {
		return strconv.FormatInt(s.now().UnixMilli(), 10)
	}
	return s
}

// WithClock overrides the timestamp source (test-only).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDSource overrides identity allocation (test-only).
func (s *Service) WithIDSource(newID func() string) *Service {
	s.newID = newID
	return s
}

// Listing is a full catalog listing response.
type Listing struct {
	Documents []domdoc.Document `json:"documents"`
	Count     int               `json:"count"`
}

// Detail is a record augmented with a fresh download capability URL.
type Detail struct {
	Document    domdoc.Document
	DownloadURL string
}

// MarshalJSON flattens the record fields and the download URL into one object.
func (d Detail) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(d.Document)
	if err != nil {
		return nil, err
	}
	if d.DownloadURL == "" {
		return base, nil
	}
	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	m["downloadUrl"] = d.DownloadURL
	return json.Marshal(m)
}

// UploadGrant is a presigned upload capability plus the derived storage key.
type UploadGrant struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
}

// List returns records matching the supplied query parameters.
func (s *Service) List(ctx context.Context, params map[string]string) (Listing, error) {
	docs, err := s.repo.List(ctx, filter.Compile(params))
	if err != nil {
		return Listing{}, fmt.Errorf("list documents: %w", err)
	}
	return Listing{Documents: docs, Count: len(docs)}, nil
}

// ListPublished returns published records only, ignoring caller filters.
// Credential checks happen in transport before this runs.
func (s *Service) ListPublished(ctx context.Context) (Listing, error) {
	docs, err := s.repo.List(ctx, filter.Compile(nil).WithStatus(domdoc.StatusPublished))
	if err != nil {
		return Listing{}, fmt.Errorf("list published documents: %w", err)
	}
	return Listing{Documents: docs, Count: len(docs)}, nil
}

// GetDetail fetches a record and attaches a fresh download URL when a blob
// is present. Broker failure degrades to a URL-less detail, never an error.
func (s *Service) GetDetail(ctx context.Context, id string) (Detail, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get document: %w", err)
	}

	detail := Detail{Document: doc}
	if doc.HasFile() {
		url, err := s.blobs.IssueDownloadURL(ctx, doc.FileKey)
		if err != nil {
			s.logger.Warn("failed to issue download URL",
				zap.String("document_id", id),
				zap.String("file_key", doc.FileKey),
				zap.Error(err),
			)
		} else {
			detail.DownloadURL = url
		}
	}
	return detail, nil
}

// Create assigns identity and lifecycle defaults to the payload and stores
// it. Only non-empty payload fields survive; unknown attributes are dropped.
func (s *Service) Create(ctx context.Context, payload domdoc.Document) (domdoc.Document, error) {
	if (payload.FileKey == "") != (payload.FileName == "") {
		return domdoc.Document{}, fmt.Errorf(
			"fileKey and fileName must be provided together: %w", domain.ErrInvalidInput)
	}

	now := domdoc.Timestamp(s.now())
	payload.ID = s.newID()
	payload.Status = domdoc.StatusDraft
	payload.CreatedAt = now
	payload.UpdatedAt = now
	payload.Extra = nil

	if err := s.repo.Put(ctx, payload); err != nil {
		return domdoc.Document{}, fmt.Errorf("create document: %w", err)
	}
	return payload, nil
}

// Update applies a whitelisted sparse patch. updatedAt is refreshed even
// when the patch names no fields.
func (s *Service) Update(ctx context.Context, id string, p domdoc.Patch) (domdoc.Document, error) {
	p.Status = nil // status never changes through this path

	doc, err := s.repo.Patch(ctx, id, p)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

// Delete removes a record per the configured policy. Under the soft policy
// a missing id surfaces NotFound (the patch path reads the record first);
// no stub record is ever created.
func (s *Service) Delete(ctx context.Context, id string) error {
	switch s.policy {
	case DeleteSoft:
		deleted := domdoc.StatusDeleted
		if _, err := s.repo.Patch(ctx, id, domdoc.Patch{Status: &deleted}); err != nil {
			return fmt.Errorf("soft delete document: %w", err)
		}
		return nil
	default:
		if err := s.repo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete document: %w", err)
		}
		return nil
	}
}

// UploadURL issues a presigned upload grant for a new blob.
func (s *Service) UploadURL(ctx context.Context, fileName, fileType string) (UploadGrant, error) {
	if fileName == "" {
		return UploadGrant{}, fmt.Errorf("fileName is required: %w", domain.ErrInvalidInput)
	}
	if fileType == "" {
		fileType = "application/pdf"
	}

	url, key, err := s.blobs.IssueUploadURL(ctx, fileName, fileType)
	if err != nil {
		return UploadGrant{}, fmt.Errorf("issue upload URL: %w", err)
	}
	return UploadGrant{UploadURL: url, FileKey: key}, nil
}
