// Package document defines the catalog record and its sparse patch.
package document

import (
	"bytes"
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a catalog record.
// Transitions are monotone: draft -> published -> deleted, deleted is terminal.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusDeleted   Status = "deleted"
)

// Document is one catalog record. Optional fields left empty are omitted
// from the stored JSON entirely, so presence-of-key signals presence-of-value.
// Attributes outside the known set round-trip through Extra.
type Document struct {
	ID                 string
	Type               string
	Title              string
	Department         string
	Number             string
	Division           string
	Date               string
	EndDate            string
	TopCategory        string
	Categories         []string
	PersonInCharge     string
	InternalContact    string
	ExternalContact    string
	Email              string
	DistributionTarget string
	FileKey            string
	FileName           string
	Status             Status
	CreatedAt          string
	UpdatedAt          string

	// Extra holds attributes not covered by the named fields, with numbers
	// normalized to int64 or float64 on read.
	Extra map[string]any
}

// docJSON is the wire/storage shape of the named fields.
type docJSON struct {
	ID                 string   `json:"id,omitempty"`
	Type               string   `json:"type,omitempty"`
	Title              string   `json:"title,omitempty"`
	Department         string   `json:"department,omitempty"`
	Number             string   `json:"number,omitempty"`
	Division           string   `json:"division,omitempty"`
	Date               string   `json:"date,omitempty"`
	EndDate            string   `json:"endDate,omitempty"`
	TopCategory        string   `json:"topCategory,omitempty"`
	Categories         []string `json:"categories,omitempty"`
	PersonInCharge     string   `json:"personInCharge,omitempty"`
	InternalContact    string   `json:"internalContact,omitempty"`
	ExternalContact    string   `json:"externalContact,omitempty"`
	Email              string   `json:"email,omitempty"`
	DistributionTarget string   `json:"distributionTarget,omitempty"`
	FileKey            string   `json:"fileKey,omitempty"`
	FileName           string   `json:"fileName,omitempty"`
	Status             Status   `json:"status,omitempty"`
	CreatedAt          string   `json:"createdAt,omitempty"`
	UpdatedAt          string   `json:"updatedAt,omitempty"`
}

var knownKeys = map[string]struct{}{
	"id": {}, "type": {}, "title": {}, "department": {}, "number": {},
	"division": {}, "date": {}, "endDate": {}, "topCategory": {},
	"categories": {}, "personInCharge": {}, "internalContact": {},
	"externalContact": {}, "email": {}, "distributionTarget": {},
	"fileKey": {}, "fileName": {}, "status": {}, "createdAt": {}, "updatedAt": {},
}

func (d Document) toJSON() docJSON {
	return docJSON{
		ID: d.ID, Type: d.Type, Title: d.Title, Department: d.Department,
		Number: d.Number, Division: d.Division, Date: d.Date, EndDate: d.EndDate,
		TopCategory: d.TopCategory, Categories: d.Categories,
		PersonInCharge: d.PersonInCharge, InternalContact: d.InternalContact,
		ExternalContact: d.ExternalContact, Email: d.Email,
		DistributionTarget: d.DistributionTarget, FileKey: d.FileKey,
		FileName: d.FileName, Status: d.Status,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

func (d *Document) fromJSON(j docJSON) {
	d.ID, d.Type, d.Title, d.Department = j.ID, j.Type, j.Title, j.Department
	d.Number, d.Division, d.Date, d.EndDate = j.Number, j.Division, j.Date, j.EndDate
	d.TopCategory, d.Categories = j.TopCategory, j.Categories
	d.PersonInCharge, d.InternalContact = j.PersonInCharge, j.InternalContact
	d.ExternalContact, d.Email = j.ExternalContact, j.Email
	d.DistributionTarget, d.FileKey, d.FileName = j.DistributionTarget, j.FileKey, j.FileName
	d.Status, d.CreatedAt, d.UpdatedAt = j.Status, j.CreatedAt, j.UpdatedAt
}

// MarshalJSON emits the named fields (empty ones omitted) merged with Extra.
func (d Document) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(d.toJSON())
	if err != nil {
		return nil, err
	}
	if len(d.Extra) == 0 {
		return base, nil
	}

	var m map[string]any
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range d.Extra {
		if _, known := knownKeys[k]; !known {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the named fields and collects the rest into Extra
// with numbers normalized (integral -> int64, fractional -> float64).
func (d *Document) UnmarshalJSON(data []byte) error {
	var j docJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	d.fromJSON(j)
	d.Extra = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}
	for k := range knownKeys {
		delete(m, k)
	}
	if len(m) > 0 {
		d.Extra = normalizeValue(m).(map[string]any)
	}
	return nil
}

// normalizeValue rewrites json.Number values to int64 when they have no
// fractional part and float64 otherwise, recursing into maps and slices.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeValue(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeValue(e)
		}
		return t
	default:
		return v
	}
}

// HasFile reports whether a blob is attached to the record.
func (d Document) HasFile() bool { return d.FileKey != "" }

// Timestamp formats a server-assigned record timestamp.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
