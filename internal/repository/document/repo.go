// Package document implements the record store adapter for catalog records.
package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kansei-cloud/docket/internal/db"
	"github.com/kansei-cloud/docket/internal/domain"
	"github.com/kansei-cloud/docket/internal/domain/catalog/filter"
	domdoc "github.com/kansei-cloud/docket/internal/domain/document"
)

// store is the consumer interface for catalog records (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Repo implements usecase/catalog.Repository and usecase/search.DocumentFinder.
// Records are JSON values under <prefix>documents:<id>, with a set of ids at
// <prefix>documents for scans.
type Repo struct {
	store  store
	prefix string
	now    func() time.Time
}

// New creates a record repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix, now: time.Now}
}

// WithClock overrides the update timestamp source (test-only).
func (r *Repo) WithClock(now func() time.Time) *Repo {
	r.now = now
	return r
}

// List returns all records matching the filter, in backend-native order.
// The backing store has no native predicate scan, so the filter is
// evaluated here after fetching each record.
func (r *Repo) List(ctx context.Context, f filter.Filter) ([]domdoc.Document, error) {
	ids, err := r.store.SMembers(ctx, r.indexKey())
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}

	docs := make([]domdoc.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := r.Get(ctx, id)
		if err != nil {
			// Index entries can briefly outlive their records.
			if errors.Is(err, domain.ErrDocumentNotFound) {
				continue
			}
			return nil, err
		}
		if f.Matches(doc) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Get returns a record by id.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	raw, err := r.store.Get(ctx, r.docKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("get %s: %w", id, err)
	}

	var doc domdoc.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domdoc.Document{}, fmt.Errorf("decode record %s: %w", id, err)
	}
	return doc, nil
}

// Put stores a record wholesale and registers it in the id index.
func (r *Repo) Put(ctx context.Context, doc domdoc.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", doc.ID, err)
	}
	if err := r.store.Set(ctx, r.docKey(doc.ID), data); err != nil {
		return fmt.Errorf("put %s: %w", doc.ID, err)
	}
	if err := r.store.SAdd(ctx, r.indexKey(), doc.ID); err != nil {
		return fmt.Errorf("index %s: %w", doc.ID, err)
	}
	return nil
}

// Patch applies a sparse update and always refreshes updatedAt, even when
// no other field changes. Missing ids surface ErrDocumentNotFound.
func (r *Repo) Patch(ctx context.Context, id string, p domdoc.Patch) (domdoc.Document, error) {
	doc, err := r.Get(ctx, id)
	if err != nil {
		return domdoc.Document{}, err
	}

	p.Apply(&doc)
	doc.UpdatedAt = domdoc.Timestamp(r.now())

	data, err := json.Marshal(doc)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("encode record %s: %w", id, err)
	}
	if err := r.store.Set(ctx, r.docKey(id), data); err != nil {
		return domdoc.Document{}, fmt.Errorf("patch %s: %w", id, err)
	}
	return doc, nil
}

// Delete removes a record and its index entry. Missing ids surface
// ErrDocumentNotFound, distinct from backend failure.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	if err := r.store.Del(ctx, r.docKey(id)); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if err := r.store.SRem(ctx, r.indexKey(), id); err != nil {
		return fmt.Errorf("unindex %s: %w", id, err)
	}
	return nil
}

// FindByFileKey resolves a record by its attached storage key. The store
// keeps no secondary index on fileKey, so this scans the id index.
func (r *Repo) FindByFileKey(ctx context.Context, fileKey string) (domdoc.Document, error) {
	if fileKey == "" {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}

	ids, err := r.store.SMembers(ctx, r.indexKey())
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("list ids: %w", err)
	}
	for _, id := range ids {
		doc, err := r.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrDocumentNotFound) {
				continue
			}
			return domdoc.Document{}, err
		}
		if doc.FileKey == fileKey {
			return doc, nil
		}
	}
	return domdoc.Document{}, domain.ErrDocumentNotFound
}

func (r *Repo) docKey(id string) string {
	return r.prefix + "documents:" + id
}

func (r *Repo) indexKey() string {
	return r.prefix + "documents"
}
